package options

import (
	"fmt"
	"os"
	"time"

	"github.com/naoina/toml"

	"github.com/iamBelugaa/mactable/pkg/errors"
)

// fileConfig is the TOML form of Options. Absent keys keep the default; a key that is
// present is applied as given, zero included, and left for Validate to judge.
type fileConfig struct {
	Capacity          *int    `toml:"capacity"`
	DefaultTTLSeconds *uint32 `toml:"default_ttl_seconds"`
	Hash              string  `toml:"hash"`
}

// LoadFile reads a TOML configuration file and returns the equivalent options.
//
//	capacity = 128
//	default_ttl_seconds = 60
//	hash = "crc32"
func LoadFile(path string) ([]OptionFunc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewValidationError(err, errors.ErrConfigRead, fmt.Sprintf("Failed to read config file %s", path)).
			WithDetail("path", path)
	}
	return Parse(data)
}

// Parse decodes TOML configuration data.
func Parse(data []byte) ([]OptionFunc, error) {
	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewValidationError(err, errors.ErrConfigParse, "Failed to parse config")
	}

	var opts []OptionFunc
	if cfg.Capacity != nil {
		opts = append(opts, WithCapacity(*cfg.Capacity))
	}
	if cfg.DefaultTTLSeconds != nil {
		opts = append(opts, WithDefaultTTL(time.Duration(*cfg.DefaultTTLSeconds)*time.Second))
	}
	if cfg.Hash != "" {
		opts = append(opts, WithHash(cfg.Hash))
	}
	return opts, nil
}
