package emulator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vm8/cpu"
)

func TestConfigDefault(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	assert.NoError(cfg.Validate())
	assert.Equal(cpu.STEP_LIMIT, cfg.StepLimit)
	assert.Equal(500*time.Millisecond, cfg.Interval)
	assert.Equal(cpu.MEMORY_SIZE, cfg.Capacity)
	assert.False(cfg.Verbose)
}

func TestConfigDecode(t *testing.T) {
	assert := assert.New(t)

	text := `
step_limit = 50
interval = "20ms"
verbose = true
locale = "en-US"

[predefine]
BASE = "0x10"
`
	cfg, err := DecodeConfig(strings.NewReader(text))
	assert.NoError(err)
	assert.Equal(50, cfg.StepLimit)
	assert.Equal(20*time.Millisecond, cfg.Interval)
	assert.Equal(DEFAULT_CAPACITY, cfg.Capacity)
	assert.True(cfg.Verbose)
	assert.Equal("en-US", cfg.Locale)
	assert.Equal(map[string]string{"BASE": "0x10"}, cfg.Predefine)
}

func TestConfigDecodeErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text string
		err  error
	}){
		{"step_limit = 0", ErrConfigInvalid},
		{"step_limit = -5", ErrConfigInvalid},
		{`interval = "-1s"`, ErrConfigInvalid},
		{"capacity = -1", ErrConfigInvalid},
		{"step_limit = ", ErrConfigInvalid},
		{`step_limit = "many"`, ErrConfigInvalid},
		{"speed = 3", ErrConfigKey("speed")},
	}

	for _, entry := range table {
		_, err := DecodeConfig(strings.NewReader(entry.text))
		assert.True(errors.Is(err, entry.err), "%v: %v", entry.text, err)
	}
}

func TestConfigLoad(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "vm8.toml")
	err := os.WriteFile(path, []byte("capacity = 16\ninterval = 0\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	assert.NoError(err)
	assert.Equal(16, cfg.Capacity)
	assert.Equal(time.Duration(0), cfg.Interval)
	assert.Equal(cpu.STEP_LIMIT, cfg.StepLimit)

	emu := NewEmulator(cfg)
	assert.Equal(16, emu.Cpu.Program.Len())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(errors.Is(err, ErrConfigInvalid))
}
