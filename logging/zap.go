package logging

import "go.uber.org/zap"

// zapLogger adapts a zap sugared logger to the Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZap wraps an existing zap logger. The caller keeps ownership of the
// underlying logger (flushing, level control).
func NewZap(base *zap.Logger) Logger {
	return &zapLogger{s: base.Sugar()}
}

// NewProduction builds a Logger backed by zap's production configuration
// (JSON output, info level).
func NewProduction() (Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewZap(base), nil
}

func (l *zapLogger) Info(msg string, fields ...any)  { l.s.Infow(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...any)  { l.s.Warnw(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...any) { l.s.Errorw(msg, fields...) }
