package midi

import (
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-modular/debug"
)

// KeyboardController handles a standard MIDI keyboard (or any note source)
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	mu     sync.Mutex
	closed bool
	events chan Event
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
		events: make(chan Event, 256),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			ev, ok := FromMessage(msg, 0)
			if !ok {
				return
			}
			kb.push(ev)
		})
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With("open input "+id))
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) push(ev Event) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.events <- ev:
	default:
		debug.LogEvery(16, "input", "%s: queue full, dropped %s", kb.id, ev)
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) Events() <-chan Event {
	return kb.events
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if !kb.closed {
		kb.closed = true
		close(kb.events)
	}
	return nil
}
