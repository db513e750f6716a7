package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"nesppu/internal/emu/log"
)

// Variant selects the timing rules a PPU instance runs under.
type Variant string

const (
	NTSC Variant = "ntsc"
	PAL  Variant = "pal"
)

type Config struct {
	PPU   PPUConfig   `toml:"ppu"`
	Video VideoConfig `toml:"video"`
}

type PPUConfig struct {
	Variant Variant `toml:"variant"`

	// OpenBusDecay is the number of PPU beats after the last register
	// access at which the whole open-bus latch is cleared to 0.
	OpenBusDecay int `toml:"open_bus_decay"`
}

type VideoConfig struct {
	DisableVSync bool `toml:"disable_vsync"`
	Emphasis     bool `toml:"emphasis"`
	Greyscale    bool `toml:"greyscale"`
}

func Default() Config {
	return Config{
		PPU: PPUConfig{
			Variant:      NTSC,
			OpenBusDecay: 77777,
		},
	}
}

var configDir = sync.OnceValue(func() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to resolve user config dir: %v", err)
	}
	dir = filepath.Join(dir, "nesppu")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the nesppu config
// directory, falling back to Default if none exists or it fails to parse.
func LoadConfigOrDefault() Config {
	var cfg Config
	path := filepath.Join(configDir(), cfgFilename)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		log.ModEmu.InfoZ("using default config").String("path", path).End()
		return Default()
	}
	return cfg
}

// SaveConfig writes cfg into the nesppu config directory.
func SaveConfig(cfg Config) error {
	path := filepath.Join(configDir(), cfgFilename)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
