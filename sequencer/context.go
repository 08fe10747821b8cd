package sequencer

import "go-modular/midi"

// Context carries everything a device needs for one processing call: the
// transport, the block's input events and the buffer it writes to. Each
// track owns one, so no state is shared between device instances.
type Context struct {
	Transport Transport
	BlockSize int
	In        []midi.Event
	Out       []midi.Event
}

// NewContext creates a context whose output buffer holds capacity events
// before it has to grow.
func NewContext(capacity int) *Context {
	return &Context{Out: make([]midi.Event, 0, capacity)}
}

// Reset prepares the context for the next block
func (c *Context) Reset(t Transport, blockSize int, in []midi.Event) {
	c.Transport = t
	c.BlockSize = blockSize
	c.In = in
	c.Out = c.Out[:0]
}

// Send queues an output event
func (c *Context) Send(ev midi.Event) {
	c.Out = append(c.Out, ev)
}
