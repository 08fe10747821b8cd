package sequencer

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-modular/debug"
	"go-modular/midi"
)

// Tempo limits
const (
	MinTempo = 20
	MaxTempo = 300
)

// UI refresh rate
const uiFPS = 30

// liveInput is a controller event with its arrival time
type liveInput struct {
	ev midi.Event
	at time.Time
}

// scheduled is an output event with its wall-clock send time
type scheduled struct {
	ev midi.Event
	at time.Time
}

// Manager runs the tracks block by block against a shared transport, feeds
// them live input and sends their output to a MIDI port.
type Manager struct {
	tracks    []*Track
	session   *SessionDevice
	settings  *SettingsDevice
	focused   Device // which device gets UI/input
	transport Transport
	blockSize int

	merged  []midi.Event // ProcessBlock result, reused
	pending []midi.Event // live input of the next block, reused

	// Multi-port MIDI output
	defaultPort string
	senders     map[string]func(gomidi.Message) error
	sendersMu   sync.RWMutex

	inputChan  chan liveInput
	outputChan chan scheduled

	mu sync.RWMutex

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a stopped manager processing blockSize samples at a
// time.
func NewManager(sampleRate float64, blockSize int, tempo float64) *Manager {
	if blockSize < 1 {
		blockSize = 1
	}
	m := &Manager{
		blockSize:  blockSize,
		merged:     make([]midi.Event, 0, outputCapacity),
		pending:    make([]midi.Event, 0, 128),
		senders:    make(map[string]func(gomidi.Message) error),
		inputChan:  make(chan liveInput, 256),
		outputChan: make(chan scheduled, 1024),
		UpdateChan: make(chan struct{}, 1),
	}
	m.transport.SampleRate = sampleRate
	m.transport.Tempo = clampTempo(tempo)
	m.transport.TempoKnown = true
	m.session = NewSessionDevice()
	m.settings = NewSettingsDevice(m)
	m.focused = m.session
	return m
}

// AddTrack appends a track
func (m *Manager) AddTrack(t *Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, t)
	m.session.tracks = m.tracks
}

// Tracks returns the tracks
func (m *Manager) Tracks() []*Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracks
}

// BlockSize returns the number of samples per block
func (m *Manager) BlockSize() int {
	return m.blockSize
}

// Transport returns a snapshot of the transport
func (m *Manager) Transport() Transport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transport
}

// ProcessBlock runs every track over one block with the given input and
// returns their merged output in timing order (ties keep track order). The
// result is reused by the next call. The transport advances while playing.
func (m *Manager) ProcessBlock(in []midi.Event) []midi.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.merged = m.merged[:0]
	for _, t := range m.tracks {
		m.merged = append(m.merged, t.Process(m.transport, m.blockSize, in)...)
	}
	slices.SortStableFunc(m.merged, func(a, b midi.Event) int {
		return cmp.Compare(a.Timing, b.Timing)
	})

	if m.transport.Playing {
		m.transport.Advance(m.blockSize)
	}
	return m.merged
}

// AllNotesOff collects the release events of every track
func (m *Manager) AllNotesOff() []midi.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []midi.Event
	for _, t := range m.tracks {
		out = append(out, t.AllNotesOff(m.transport)...)
	}
	return out
}

// Play starts playback from the beginning
func (m *Manager) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transport.Playing {
		return
	}
	m.transport.Playing = true
	m.transport.Rewind()
	debug.Log("transport", "play at %.1f bpm", m.transport.BPM())
}

// Stop stops playback. Devices release their notes on the next block.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.transport.Playing {
		return
	}
	m.transport.Playing = false
	debug.Log("transport", "stop at sample %d", m.transport.PosSamples)
}

// TogglePlay starts or stops playback
func (m *Manager) TogglePlay() {
	if m.Transport().Playing {
		m.Stop()
	} else {
		m.Play()
	}
}

// SetTempo sets the BPM
func (m *Manager) SetTempo(bpm float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transport.Tempo = clampTempo(bpm)
	m.transport.TempoKnown = true
	debug.Log("transport", "tempo %.1f", m.transport.Tempo)
}

func clampTempo(bpm float64) float64 {
	return min(max(bpm, MinTempo), MaxTempo)
}

// SetDefaultPort sets the default MIDI output port name
func (m *Manager) SetDefaultPort(portName string) {
	m.sendersMu.Lock()
	defer m.sendersMu.Unlock()
	m.defaultPort = portName
}

// DefaultPort returns the output port name
func (m *Manager) DefaultPort() string {
	m.sendersMu.RLock()
	defer m.sendersMu.RUnlock()
	return m.defaultPort
}

// getSender returns a sender for the given port name, lazily opening it
func (m *Manager) getSender(portName string) (func(gomidi.Message) error, error) {
	if portName == "" {
		return nil, fault.New("no output port configured")
	}

	m.sendersMu.RLock()
	if sender, ok := m.senders[portName]; ok {
		m.sendersMu.RUnlock()
		return sender, nil
	}
	m.sendersMu.RUnlock()

	m.sendersMu.Lock()
	defer m.sendersMu.Unlock()

	// Double-check after acquiring write lock
	if sender, ok := m.senders[portName]; ok {
		return sender, nil
	}

	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			sender, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fault.Wrap(err, fmsg.With("open output "+portName))
			}
			m.senders[portName] = sender
			debug.Log("ports", "opened output %s", portName)
			return sender, nil
		}
	}
	return nil, fault.New("output port not found: " + portName)
}

// send writes one event to the default port
func (m *Manager) send(ev midi.Event) {
	msg := ev.Message()
	if msg == nil {
		return
	}
	sender, err := m.getSender(m.DefaultPort())
	if err != nil {
		debug.LogEvery(100, "dispatch", "drop %s: %v", ev, err)
		return
	}
	if err := sender(msg); err != nil {
		debug.LogEvery(100, "dispatch", "send %s: %v", ev, err)
	}
}

// SetMIDIInput forwards a controller's events into the live input of the
// following blocks. Forwarding ends when the controller closes.
func (m *Manager) SetMIDIInput(ctrl midi.Controller) {
	if ctrl == nil {
		return
	}
	go func() {
		for ev := range ctrl.Events() {
			m.Feed(ev)
		}
		debug.Log("input", "%s closed", ctrl.ID())
	}()
}

// Feed queues one live input event, stamped with the current time
func (m *Manager) Feed(ev midi.Event) {
	select {
	case m.inputChan <- liveInput{ev: ev, at: time.Now()}:
	default:
		debug.LogEvery(16, "input", "input queue full, dropped %s", ev)
	}
}

// drainInput turns the input that arrived during the previous block into
// block offsets. Events play one block late, keeping their spacing.
func (m *Manager) drainInput(blockStart time.Time) []midi.Event {
	m.pending = m.pending[:0]
	sampleDur := time.Duration(float64(time.Second) / m.transport.SampleRate)
	for {
		select {
		case in := <-m.inputChan:
			offset := 0
			if sampleDur > 0 {
				offset = int(in.at.Sub(blockStart) / sampleDur)
			}
			in.ev.Timing = uint32(min(max(offset, 0), m.blockSize-1))
			m.pending = append(m.pending, in.ev)
		default:
			return m.pending
		}
	}
}

// Run drives ProcessBlock from the wall clock until ctx is done (blocking -
// run in goroutine). Output events are handed to the output loop with their
// send time. On exit every track releases its notes.
func (m *Manager) Run(ctx context.Context) {
	go m.midiOutputLoop(ctx)

	sampleRate := m.Transport().SampleRate
	blockDur := time.Duration(float64(m.blockSize) / sampleRate * float64(time.Second))
	if blockDur <= 0 {
		blockDur = time.Millisecond
	}
	ticker := time.NewTicker(blockDur)
	uiTicker := time.NewTicker(time.Second / uiFPS)
	defer ticker.Stop()
	defer uiTicker.Stop()

	debug.Log("engine", "running: block=%d rate=%.0f (%v)", m.blockSize, sampleRate, blockDur)

	blockStart := time.Now()
	for {
		select {
		case <-ctx.Done():
			for _, ev := range m.AllNotesOff() {
				m.send(ev)
			}
			return
		case now := <-ticker.C:
			in := m.drainInput(blockStart)
			for _, ev := range m.ProcessBlock(in) {
				at := now.Add(time.Duration(float64(ev.Timing) / sampleRate * float64(time.Second)))
				select {
				case m.outputChan <- scheduled{ev: ev, at: at}:
				default:
					debug.LogEvery(16, "dispatch", "output queue full, dropped %s", ev)
				}
			}
			blockStart = now
		case <-uiTicker.C:
			m.notifyUpdate()
		}
	}
}

// midiOutputLoop sends scheduled events at their time
func (m *Manager) midiOutputLoop(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-m.outputChan:
			if wait := time.Until(s.at); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			m.send(s.ev)
			debug.LogEvery(64, "dispatch", "%s ch=%d note=%d", s.ev, s.ev.Channel+1, s.ev.Note)
		}
	}
}

// Focus management

// Focused returns the currently focused device
func (m *Manager) Focused() Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.focused
}

// FocusSession focuses the track overview
func (m *Manager) FocusSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focused = m.session
}

// FocusSettings focuses the port settings
func (m *Manager) FocusSettings() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focused = m.settings
}

// SetMIDIPorts updates the port lists shown by the settings device
func (m *Manager) SetMIDIPorts(inputs, outputs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.SetMIDIPorts(inputs, outputs)
}

// FocusTrack focuses the device of track idx
func (m *Manager) FocusTrack(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= 0 && idx < len(m.tracks) && m.tracks[idx].HasDevice() {
		m.focused = m.tracks[idx].Device
	}
}

// FocusNext cycles focus: session, track 1, track 2, ...
func (m *Manager) FocusNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := 0
	for i, t := range m.tracks {
		if t.Device == m.focused {
			next = i + 1
		}
	}
	for ; next < len(m.tracks); next++ {
		if m.tracks[next].HasDevice() {
			m.focused = m.tracks[next].Device
			return
		}
	}
	m.focused = m.session
}

// HandleKey routes a key press to the focused device
func (m *Manager) HandleKey(key string) {
	m.mu.Lock()
	if m.focused != nil {
		m.focused.HandleKey(key)
	}
	m.mu.Unlock()
	m.notifyUpdate()
}

// View returns the view of the focused device
func (m *Manager) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.focused != nil {
		return m.focused.View()
	}
	return ""
}

// notifyUpdate notifies the TUI
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
