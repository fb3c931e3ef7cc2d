// Package notify defines the fire-and-forget push channel used to tell
// connected admin clients that data changed. The engine never depends on
// delivery success.
package notify

// AllClients is the userID wildcard for broadcast notifications.
const AllClients = "*"

// Events emitted by the engine's coordinators.
const (
	EventRefreshProducts   = "refresh-products"
	EventRefreshCategories = "refresh-categories"
)

// Notifier pushes an event name to a connected client. Implementations must
// not block the caller; there is no error return by design.
type Notifier interface {
	Notify(userID, event string)
}

// Nop discards all notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(string, string) {}

// Func adapts a plain function to the Notifier interface.
type Func func(userID, event string)

// Notify implements Notifier.
func (f Func) Notify(userID, event string) { f(userID, event) }
