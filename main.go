package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-modular/config"
	"go-modular/debug"
	"go-modular/midi"
	"go-modular/sequencer"
	"go-modular/theme"
	"go-modular/tui"
)

func main() {
	defer gomidi.CloseDriver()

	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Debug {
		err = debug.Enable()
	} else {
		err = debug.FromEnv()
	}
	if err != nil {
		fmt.Printf("debug log disabled: %v\n", err)
	}
	defer debug.Disable()

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Log("config", "palette: %v", err)
	}
	th := theme.New(palette)

	// Create sequencer manager
	e := cfg.Engine
	manager := sequencer.NewManager(e.SampleRate, e.BlockSize, e.Tempo)
	manager.AddTrack(sequencer.NewTrack("Euclid", sequencer.NewEuclidDevice(cfg.EuclidParams(), cfg.EuclidChannel())))
	manager.AddTrack(sequencer.NewTrack("Patterns", sequencer.NewPatternsDevice(cfg.Patterns)))

	outPorts := midi.OutPortNames()
	port := cfg.Output.PortName
	if port == "" && len(outPorts) > 0 {
		port = outPorts[0]
	}
	manager.SetDefaultPort(port)

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(cfg.Input.Filters...)
	if port != "" {
		deviceMgr.Exclude(port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	done := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(done)
	}()

	m := tui.NewModel(manager, deviceMgr, th, midi.OutPortNames)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	// release sounding notes before the driver closes
	cancel()
	<-done
	return err
}
