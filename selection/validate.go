package selection

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrFieldNotRecognized signals that a caller-supplied selection names a
// field the entity schema does not declare (or declares write-only).
// It surfaces from ValidateRequest as a validation failure; Project itself
// never raises it.
var ErrFieldNotRecognized = errors.New("field not recognized")

// ValidateRequest models the validation layer that runs before Project: it
// checks a raw decoded selection object against the schema, rejecting
// unknown or write-only field names and non-boolean include flags.
func (s *Schema) ValidateRequest(raw map[string]any) error {
	keys := make([]*validation.KeyRules, 0, len(s.fields))
	for _, f := range s.fields {
		if f.WriteOnly {
			continue
		}
		keys = append(keys, validation.Key(f.Name,
			validation.In(true, false).Error("must be a boolean"),
		).Optional())
	}

	err := validation.Validate(raw, validation.Map(keys...))
	if err == nil {
		return nil
	}

	// Unknown (or write-only) names take precedence in the failure report:
	// they are the condition the request layer formats for the caller.
	var unknown []string
	for name := range raw {
		f, ok := s.index[name]
		if !ok || f.WriteOnly {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s selection: %w: %s", s.entity, ErrFieldNotRecognized, strings.Join(unknown, ", "))
	}

	return fmt.Errorf("%s selection: %w", s.entity, err)
}

// ParseRequest validates a raw selection object and converts it into a
// Request. Values that are not boolean true are treated as "not requested".
func (s *Schema) ParseRequest(raw map[string]any) (Request, error) {
	if err := s.ValidateRequest(raw); err != nil {
		return nil, err
	}
	req := make(Request, len(raw))
	for name, v := range raw {
		if include, ok := v.(bool); ok {
			req[name] = include
		}
	}
	return req, nil
}
