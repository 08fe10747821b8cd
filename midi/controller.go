package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
)

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Channel voice events, timing left at 0 (the Manager places them in a block)
	Events() <-chan Event

	// Lifecycle
	Close() error
}
