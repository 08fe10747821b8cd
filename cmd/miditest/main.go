package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-modular/midi"
	"go-modular/widgets"
)

func main() {
	defer gomidi.CloseDriver()

	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor(ctx, os.Args[2:])
	case "poll":
		pollDevices(ctx)
	case "note":
		err = sendNote(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                 - List all MIDI ports")
	fmt.Println("  monitor [filter...]  - Print events from matching inputs")
	fmt.Println("  poll                 - Report input ports connecting/disconnecting")
	fmt.Println("  note <port> <key>    - Play one note on an output port")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

// monitor prints every converted event of the inputs passing filters
func monitor(ctx context.Context, filters []string) {
	dm := midi.NewDeviceManager(filters...)
	go dm.Run(ctx)

	fmt.Println("Listening... Ctrl+C to exit.")
	start := time.Now()
	for event := range dm.Events() {
		if event.Type != midi.DeviceConnected {
			fmt.Printf("[%s] disconnected\n", event.ID)
			continue
		}
		fmt.Printf("[%s] connected\n", event.ID)
		go func(c midi.Controller) {
			for ev := range c.Events() {
				fmt.Printf("%8.3fs  %-18s %s\n", time.Since(start).Seconds(), c.ID(), describe(ev))
			}
		}(event.Controller)
	}
}

func describe(ev midi.Event) string {
	switch ev.Type {
	case midi.NoteOn, midi.NoteOff, midi.PolyPressure:
		return fmt.Sprintf("%-16s ch=%-2d %-4s vel=%.2f", ev, ev.Channel+1, widgets.NoteName(ev.Note), ev.Velocity)
	case midi.CC:
		return fmt.Sprintf("%-16s ch=%-2d cc=%d val=%d", ev, ev.Channel+1, ev.Control, ev.Value)
	case midi.PitchBend:
		return fmt.Sprintf("%-16s ch=%-2d bend=%d", ev, ev.Channel+1, ev.Bend)
	}
	return fmt.Sprintf("%-16s ch=%-2d", ev, ev.Channel+1)
}

func pollDevices(ctx context.Context) {
	fmt.Println("Polling for input ports every second... Ctrl+C to exit.")

	dm := midi.NewDeviceManager()
	go dm.Run(ctx)

	for event := range dm.Events() {
		state := "connected"
		if event.Type == midi.DeviceDisconnected {
			state = "disconnected"
		}
		fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), event.ID, state)
	}
}

func sendNote(args []string) error {
	if len(args) < 2 {
		return fault.New("usage: note <port> <key>")
	}
	key, err := strconv.Atoi(args[1])
	if err != nil || key < 0 || key > 127 {
		return fault.New("key must be 0-127: " + args[1])
	}

	port, err := gomidi.FindOutPort(args[0])
	if err != nil {
		return fault.Wrap(err, fmsg.With("find output "+args[0]))
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return fault.Wrap(err, fmsg.With("open output "+args[0]))
	}

	on := midi.NewNoteOn(0, 0, uint8(key), 1)
	off := midi.NewNoteOff(0, 0, uint8(key), 0)
	if err := send(on.Message()); err != nil {
		return fault.Wrap(err, fmsg.With("send note-on"))
	}
	time.Sleep(500 * time.Millisecond)
	if err := send(off.Message()); err != nil {
		return fault.Wrap(err, fmsg.With("send note-off"))
	}
	fmt.Printf("played %s on %s\n", widgets.NoteName(uint8(key)), port.String())
	return nil
}
