package calcium

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds the engine configuration read from calcium.toml and the
// CALCIUM_* environment, in that order (environment wins).
type Config struct {
	// Precision is the decimal precision for approximate arithmetic.
	Precision uint `toml:"precision"`

	// Strict enables strict validation (arity padding, per-operand
	// type checks, inference commits).
	Strict bool `toml:"strict"`

	// Angle is the angular unit: radians, degrees, gradians, or turns.
	Angle string `toml:"angle"`
}

// DefaultConfig is machine precision, non-strict, radians.
func DefaultConfig() Config {
	return Config{Precision: 15, Angle: string(Radians)}
}

// LoadConfig reads an optional TOML file and applies environment
// overrides: CALCIUM_PRECISION, CALCIUM_STRICT, CALCIUM_ANGLE. A
// missing file is fine; a malformed one is not.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "calcium: reading %s", path)
			}
		} else if !os.IsNotExist(err) {
			return cfg, errors.Wrapf(err, "calcium: reading %s", path)
		}
	}

	if v := os.Getenv("CALCIUM_PRECISION"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return cfg, errors.Wrap(err, "calcium: CALCIUM_PRECISION")
		}
		cfg.Precision = uint(n)
	}
	if v := os.Getenv("CALCIUM_STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.Wrap(err, "calcium: CALCIUM_STRICT")
		}
		cfg.Strict = b
	}
	if v := os.Getenv("CALCIUM_ANGLE"); v != "" {
		cfg.Angle = v
	}

	switch AngleUnit(cfg.Angle) {
	case Radians, Degrees, Gradians, Turns:
	default:
		return cfg, errors.Errorf("calcium: unknown angle unit %q", cfg.Angle)
	}
	return cfg, nil
}

// Context builds a context from the configuration.
func (cfg Config) Context() *Context {
	return NewContext(
		WithPrecision(cfg.Precision),
		WithStrict(cfg.Strict),
		WithAngleUnit(AngleUnit(cfg.Angle)),
	)
}
