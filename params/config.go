package params

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a parameter file. The core solver never
// reads this directly (section 6 of the design treats parameter files as an
// external-collaborator concern); LoadConfig is a thin adapter that a CLI or
// test harness can call to build the three parameter bundles from one file.
type Config struct {
	ITS ITSParam `yaml:"its"`
	AMG AMGParam `yaml:"amg"`
	ILU ILUParam `yaml:"ilu"`
}

// DefaultConfig returns a Config seeded with the package defaults, so a
// partial YAML document only needs to override the fields it cares about.
func DefaultConfig() Config {
	return Config{
		ITS: DefaultITSParam(),
		AMG: DefaultAMGParam(),
		ILU: DefaultILUParam(),
	}
}

// LoadConfig reads a YAML parameter file from path and overlays it onto the
// package defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "gofasp: reading parameter file %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "gofasp: parsing parameter file %q", path)
	}
	return cfg, nil
}
