package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-modular/debug"
	"go-modular/euclid"
	"go-modular/harmony"
	"go-modular/sequencer"
)

// Engine limits
const (
	MinSampleRate = 8000
	MaxSampleRate = 192000
	MaxBlockSize  = 8192
)

// InputConfig selects the MIDI inputs
type InputConfig struct {
	// substrings of port names to open, empty = every input port
	Filters []string `json:"filters,omitempty"`
}

// OutputConfig selects the MIDI output
type OutputConfig struct {
	PortName string `json:"portName,omitempty"` // empty = first port found
}

// EngineConfig holds the block clock settings
type EngineConfig struct {
	SampleRate float64 `json:"sampleRate"`
	BlockSize  int     `json:"blockSize"`
	Tempo      float64 `json:"tempo"`
}

// EuclidConfig holds the rhythm device settings. Voices missing from the
// file use the kit note and the default rhythm.
type EuclidConfig struct {
	Kit     string               `json:"kit"`
	Channel int                  `json:"channel"` // 1-16
	Voices  []euclid.VoiceParams `json:"voices,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP palette path
}

// Config is the main configuration structure
type Config struct {
	Input    InputConfig    `json:"input"`
	Output   OutputConfig   `json:"output"`
	Engine   EngineConfig   `json:"engine"`
	Euclid   EuclidConfig   `json:"euclid"`
	Patterns harmony.Params `json:"patterns"`
	UI       UIConfig       `json:"ui"`
	Debug    bool           `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			SampleRate: 44100,
			BlockSize:  512,
			Tempo:      sequencer.DefaultTempo,
		},
		Euclid: EuclidConfig{
			Kit:     sequencer.DefaultKit,
			Channel: 10,
		},
		Patterns: harmony.DefaultParams(),
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("find home directory"))
	}
	return filepath.Join(home, ".config", "go-modular"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path. Settings missing from
// the file keep their defaults; a missing file yields DefaultConfig.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			debug.Log("config", "%s not found, using defaults", path)
			return DefaultConfig(), nil
		}
		return nil, fault.Wrap(err, fmsg.With("read config"))
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err,
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("parse config", fmt.Sprintf("%s is not valid JSON.", path)))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fault.Wrap(err, fmsg.With("config "+path))
	}

	debug.Log("config", "loaded %s", path)
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create config directory"))
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode config"))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.With("write config"))
	}

	debug.Log("config", "saved %s", path)
	return nil
}

// Validate reports the first setting out of range. Errors carry a user
// facing message (fmsg.GetIssue) and the InvalidArgument tag.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fault.Wrap(err, ftag.With(ftag.InvalidArgument))
	}
	return nil
}

func (c *Config) validate() error {
	e := c.Engine
	if e.SampleRate < MinSampleRate || e.SampleRate > MaxSampleRate {
		return invalid(fmt.Sprintf("sample rate %.0f out of range", e.SampleRate),
			fmt.Sprintf("Sample rate must be between %d and %d.", MinSampleRate, MaxSampleRate))
	}
	if e.BlockSize < 1 || e.BlockSize > MaxBlockSize {
		return invalid(fmt.Sprintf("block size %d out of range", e.BlockSize),
			fmt.Sprintf("Block size must be between 1 and %d.", MaxBlockSize))
	}
	if e.Tempo < sequencer.MinTempo || e.Tempo > sequencer.MaxTempo {
		return invalid(fmt.Sprintf("tempo %.1f out of range", e.Tempo),
			fmt.Sprintf("Tempo must be between %d and %d bpm.", sequencer.MinTempo, sequencer.MaxTempo))
	}

	if _, ok := sequencer.Kits[c.Euclid.Kit]; !ok {
		return invalid("unknown kit "+c.Euclid.Kit,
			fmt.Sprintf("Kit must be one of %v.", sequencer.KitNames()))
	}
	if c.Euclid.Channel < 1 || c.Euclid.Channel > 16 {
		return invalid(fmt.Sprintf("euclid channel %d out of range", c.Euclid.Channel), "Euclid channel must be between 1 and 16.")
	}
	if len(c.Euclid.Voices) > sequencer.NumVoices {
		return invalid(fmt.Sprintf("too many euclid voices: %d", len(c.Euclid.Voices)),
			fmt.Sprintf("At most %d euclid voices can be configured.", sequencer.NumVoices))
	}
	for i, v := range c.Euclid.Voices {
		if err := v.Validate(); err != nil {
			return fault.Wrap(err, fmsg.With(fmt.Sprintf("euclid voice %d", i+1)))
		}
	}

	if err := c.Patterns.Validate(); err != nil {
		return fault.Wrap(err, fmsg.With("patterns"))
	}
	return nil
}

func invalid(internal, external string) error {
	return fault.New(internal, fmsg.WithDesc(internal, external))
}

// EuclidParams returns the voice parameters of the rhythm device: the kit
// defaults overlaid with the configured voices.
func (c *Config) EuclidParams() [sequencer.NumVoices]euclid.VoiceParams {
	params := sequencer.DefaultEuclidParams(c.Euclid.Kit)
	for i, v := range c.Euclid.Voices {
		if i < len(params) {
			params[i] = v.Clamp()
		}
	}
	return params
}

// EuclidChannel returns the 0-based rhythm output channel
func (c *Config) EuclidChannel() uint8 {
	return uint8(min(max(c.Euclid.Channel, 1), 16) - 1)
}
