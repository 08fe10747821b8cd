package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"go-modular/config"
	"go-modular/debug"
	"go-modular/euclid"
	"go-modular/midi"
	"go-modular/sequencer"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.config/go-modular/config.json)")
	bars := flag.Float64("bars", 4, "Length in 4/4 bars")
	tempo := flag.Float64("tempo", 0, "Tempo in bpm (0 = config tempo)")
	sampleRate := flag.Float64("sample-rate", 0, "Engine sample rate (0 = config)")
	blockSize := flag.Int("block", 0, "Samples per block (0 = config)")
	chord := flag.String("chord", "", "Chord held on the chord channel, e.g. 60,64,67")
	pattern := flag.String("pattern", "", "Keys held on channel 1, e.g. 60,61,62")
	output := flag.String("output", "out.mid", "Output MIDI file path")
	flag.Parse()

	if err := run(*configPath, *bars, *tempo, *sampleRate, *blockSize, *chord, *pattern, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if issue := fmsg.GetIssue(err); issue != "" {
			fmt.Fprintln(os.Stderr, issue)
		}
		os.Exit(1)
	}
}

func run(configPath string, bars, tempo, sampleRate float64, blockSize int, chord, pattern, output string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Debug {
		err = debug.Enable()
	} else {
		err = debug.FromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "debug log disabled: %v\n", err)
	}
	defer debug.Disable()

	if tempo > 0 {
		cfg.Engine.Tempo = tempo
	}
	if sampleRate > 0 {
		cfg.Engine.SampleRate = sampleRate
	}
	if blockSize > 0 {
		cfg.Engine.BlockSize = blockSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	chordKeys, err := parseKeys(chord)
	if err != nil {
		return fault.Wrap(err, fmsg.With("parse -chord"))
	}
	patternKeys, err := parseKeys(pattern)
	if err != nil {
		return fault.Wrap(err, fmsg.With("parse -pattern"))
	}

	e := cfg.Engine
	manager := sequencer.NewManager(e.SampleRate, e.BlockSize, e.Tempo)
	manager.AddTrack(sequencer.NewTrack("Euclid", sequencer.NewEuclidDevice(cfg.EuclidParams(), cfg.EuclidChannel())))
	manager.AddTrack(sequencer.NewTrack("Patterns", sequencer.NewPatternsDevice(cfg.Patterns)))

	var first []midi.Event
	for _, k := range chordKeys {
		first = append(first, midi.NewNoteOn(0, cfg.Patterns.ChordChannelIndex(), k, 1))
	}
	for _, k := range patternKeys {
		first = append(first, midi.NewNoteOn(0, 0, k, 1))
	}

	length := euclid.BeatsToSamples(bars*4, e.Tempo, e.SampleRate)
	events := sequencer.Render(manager, length, first)

	f, err := os.Create(output)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create "+output))
	}
	if err := sequencer.WriteSMF(f, events, e.Tempo, e.SampleRate); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("close "+output))
	}

	fmt.Printf("Rendered %.1f bars at %.1f bpm: %d events -> %s\n", bars, e.Tempo, len(events), output)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

// parseKeys reads a comma separated list of MIDI keys
func parseKeys(s string) ([]uint8, error) {
	var keys []uint8
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		k, err := strconv.Atoi(field)
		if err != nil || k < 0 || k > 127 {
			return nil, fault.New("invalid key "+field, fmsg.WithDesc("invalid key "+field, "Keys must be numbers from 0 to 127."))
		}
		keys = append(keys, uint8(k))
	}
	return keys, nil
}
