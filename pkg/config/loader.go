package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvPath names the variable consulted when no path is given.
const EnvPath = "SONORITY_CONFIG"

// DefaultPath is used when it exists and no path is given.
const DefaultPath = "./sonority.yaml"

// Load reads configuration from a YAML or TOML file and environment
// variables. Priority: ENV > file > defaults (via env-default tags).
// The file is path, else $SONORITY_CONFIG, else ./sonority.yaml. A missing
// default file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = os.Getenv(EnvPath)
		explicitPath = path != ""
	}
	if !explicitPath {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
