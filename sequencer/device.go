package sequencer

// Device is a note processor hosted on a track
type Device interface {
	Name() string

	// Process runs one block: read ctx.In and ctx.Transport, write ctx.Out
	// with timings inside the block, in timing order.
	Process(ctx *Context)

	// AllNotesOff releases everything the device is sounding at timing 0
	AllNotesOff(ctx *Context)

	// UI - device returns render data, Manager handles output
	View() string
	HandleKey(key string)
}
