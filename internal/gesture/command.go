// Package gesture turns per-frame hand observations into navigation commands.
package gesture

import "fmt"

// Command is a navigation step emitted by the arbiter.
type Command string

const (
	// Advance moves the selection forward.
	Advance Command = "advance"
	// Retreat moves the selection back.
	Retreat Command = "retreat"
)

// ParseCommand converts a wire name into a Command.
func ParseCommand(s string) (Command, error) {
	switch Command(s) {
	case Advance, Retreat:
		return Command(s), nil
	default:
		return "", fmt.Errorf("unknown navigation command %q", s)
	}
}

// Sink receives emitted commands. Delivery is one-way; the sink's state is
// never read back by the arbiter.
type Sink interface {
	Navigate(cmd Command)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(cmd Command)

// Navigate calls f(cmd).
func (f SinkFunc) Navigate(cmd Command) {
	f(cmd)
}
