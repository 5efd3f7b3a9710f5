package emulator

import (
	"errors"
	"io"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/vm8/cpu"
)

const (
	DEFAULT_INTERVAL = 500 * time.Millisecond // Default delay between paced steps.
	DEFAULT_CAPACITY = cpu.MEMORY_SIZE        // Default program capacity.
)

// Config is the emulator configuration.
//
//	step_limit = 1000
//	interval = "500ms"
//	capacity = 256
//	verbose = false
//	locale = "en-US"
//
//	[predefine]
//	BASE = "0x10"
type Config struct {
	StepLimit int               `toml:"step_limit"` // Maximum executed steps.
	Interval  time.Duration     `toml:"interval"`   // Delay between steps in Run.
	Capacity  int               `toml:"capacity"`   // Program capacity for Load; DEFAULT_CAPACITY if zero.
	Verbose   bool              `toml:"verbose"`    // Verbose logging.
	Locale    string            `toml:"locale"`     // Message language; host locale if empty.
	Predefine map[string]string `toml:"predefine"`  // Extra assembler constants.
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		StepLimit: cpu.STEP_LIMIT,
		Interval:  DEFAULT_INTERVAL,
		Capacity:  DEFAULT_CAPACITY,
	}
}

// Validate checks the configuration values.
func (cfg Config) Validate() (err error) {
	if cfg.StepLimit <= 0 {
		err = errors.Join(ErrConfigInvalid, errors.New(f("step_limit must be positive")))
		return
	}
	if cfg.Interval < 0 {
		err = errors.Join(ErrConfigInvalid, errors.New(f("interval must not be negative")))
		return
	}
	if cfg.Capacity < 0 {
		err = errors.Join(ErrConfigInvalid, errors.New(f("capacity must not be negative")))
		return
	}

	return
}

// finish validates a decoded configuration.
func finish(md toml.MetaData, cfg Config) (Config, error) {
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return cfg, errors.Join(ErrConfigInvalid, ErrConfigKey(undecoded[0].String()))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DecodeConfig reads a TOML configuration. Missing keys keep their
// default values.
func DecodeConfig(input io.Reader) (cfg Config, err error) {
	cfg = DefaultConfig()

	md, err := toml.NewDecoder(input).Decode(&cfg)
	if err != nil {
		err = errors.Join(ErrConfigInvalid, err)
		return
	}

	return finish(md, cfg)
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (cfg Config, err error) {
	cfg = DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		err = errors.Join(ErrConfigInvalid, err)
		return
	}

	return finish(md, cfg)
}
