package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-modular/midi"
	"go-modular/sequencer"
	"go-modular/theme"
)

// tempo change per +/- press
const tempoStep = 5

type keyMap struct {
	Play     key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Next     key.Binding
	Session  key.Binding
	Track    key.Binding
	Settings key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Faster, k.Slower, k.Next, k.Session, k.Track, k.Settings, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap() keyMap {
	return keyMap{
		Play:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play/stop")),
		Faster:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "tempo up")),
		Slower:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "tempo down")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next device")),
		Session:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "session")),
		Track:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "track")),
		Settings: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "ports")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Model struct {
	Manager   *sequencer.Manager
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme

	keys     keyMap
	help     help.Model
	inputs   map[string]bool // connected controller ids
	outPorts func() []string
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// NewModel creates the monitor. outPorts lists the output ports shown on
// the settings page.
func NewModel(manager *sequencer.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme, outPorts func() []string) Model {
	m := Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     th,
		keys:      newKeyMap(),
		help:      help.New(),
		inputs:    make(map[string]bool),
		outPorts:  outPorts,
	}
	m.refreshPorts()
	return m
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.Manager.Stop()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Play):
			m.Manager.TogglePlay()

		case key.Matches(msg, m.keys.Faster):
			m.Manager.SetTempo(m.Manager.Transport().BPM() + tempoStep)

		case key.Matches(msg, m.keys.Slower):
			m.Manager.SetTempo(m.Manager.Transport().BPM() - tempoStep)

		case key.Matches(msg, m.keys.Next):
			m.Manager.FocusNext()

		case key.Matches(msg, m.keys.Session):
			m.Manager.FocusSession()

		case key.Matches(msg, m.keys.Track):
			m.Manager.FocusTrack(int(msg.String()[0] - '1'))

		case key.Matches(msg, m.keys.Settings):
			m.refreshPorts()
			m.Manager.FocusSettings()

		default:
			m.Manager.HandleKey(msg.String())
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.inputs[event.ID] = true
			m.Manager.SetMIDIInput(event.Controller)
		case midi.DeviceDisconnected:
			delete(m.inputs, event.ID)
		}
		m.refreshPorts()
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) refreshPorts() {
	var outputs []string
	if m.outPorts != nil {
		outputs = m.outPorts()
	}
	m.Manager.SetMIDIPorts(m.inputNames(), outputs)
}

func (m Model) inputNames() []string {
	names := make([]string, 0, len(m.inputs))
	for id := range m.inputs {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// header renders transport state, tempo, position and output port
func (m Model) header() string {
	t := m.Manager.Transport()

	state := lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render("STOP")
	if t.Playing {
		state = lipgloss.NewStyle().Foreground(m.Theme.Active()).Render("PLAY")
	}

	port := m.Manager.DefaultPort()
	if port == "" {
		port = "no output"
	}

	title := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true).Render("go-modular")
	info := lipgloss.NewStyle().Foreground(m.Theme.FG()).Render(
		fmt.Sprintf("%6.1fbpm  beat %7.2f  -> %s  in:%d", t.BPM(), t.PosBeats, port, len(m.inputs)))
	return title + "  " + state + "  " + info
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(m.header())
	out.WriteString("\n\n")
	out.WriteString(m.Manager.View())
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(m.help.View(m.keys)))

	return out.String()
}
