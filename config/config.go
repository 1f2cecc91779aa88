// Package config holds the run configuration shared by the rapidroute commands.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rapidroute/rapidroute-go/oracle/remote"
	"github.com/rapidroute/rapidroute-go/route"
	"gopkg.in/yaml.v3"
)

// Config is loaded from YAML with priority: env > file > defaults.
type Config struct {

	// Fabric is the pathname of a fabric description used as the oracle when Oracle.Endpoint is empty.
	Fabric string `yaml:"fabric"`

	Oracle  OracleConfig  `yaml:"oracle"`
	Solver  SolverConfig  `yaml:"solver"`
	Detour  DetourConfig  `yaml:"detour"`
	Catalog CatalogConfig `yaml:"catalog"`
	Report  ReportConfig  `yaml:"report"`
}

type OracleConfig struct {
	// Endpoint is an http(s) URL or "unix:///path/to.sock"
	Endpoint string `yaml:"endpoint"`
}

type SolverConfig struct {
	Src      route.NodeID `yaml:"src"`
	Snk      route.NodeID `yaml:"snk"`
	MaxDepth int          `yaml:"max_depth"`
	Orbits   []int        `yaml:"orbits"`
}

type DetourConfig struct {
	MaxDeviations int `yaml:"max_deviations"`
}

type CatalogConfig struct {
	// Path is the catalog db directory; "" keeps the catalog in memory.
	Path string `yaml:"path"`
}

type ReportConfig struct {
	// Dir is where report dumps are written; "" disables dumps.
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

func Default() Config {
	return Config{
		Solver: SolverConfig{
			MaxDepth: route.DefaultMaxDepth,
			Orbits:   []int{route.DefaultOrbit},
		},
		Detour: DetourConfig{
			MaxDeviations: route.MaxSupportedDeviations,
		},
		Report: ReportConfig{
			Prefix: "rapidroute",
		},
	}
}

// Load reads the YAML file at pathname over the defaults, applies env overrides, and validates the result.
// An empty pathname yields the defaults.
func Load(pathname string) (Config, error) {
	cfg := Default()

	if pathname != "" {
		data, err := os.ReadFile(pathname)
		if err != nil {
			return cfg, errors.Wrap(err, "load config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(route.ErrInvalidInput, "parse config %q: %v", pathname, err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg *Config) loadFromEnv() {
	if v := os.Getenv("RAPIDROUTE_FABRIC"); v != "" {
		cfg.Fabric = v
	}
	if v := os.Getenv("RAPIDROUTE_ORACLE"); v != "" {
		cfg.Oracle.Endpoint = v
	}
	if v := os.Getenv("RAPIDROUTE_MAX_DEPTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Solver.MaxDepth = i
		}
	}
	if v := os.Getenv("RAPIDROUTE_CATALOG"); v != "" {
		cfg.Catalog.Path = v
	}
}

// Validate checks that the configuration is usable.
func (cfg Config) Validate() error {
	if cfg.Solver.MaxDepth < 1 {
		return errors.Wrap(route.ErrInvalidInput, "solver.max_depth must be >= 1")
	}
	if len(cfg.Solver.Orbits) == 0 {
		return errors.Wrap(route.ErrInvalidInput, "solver.orbits must not be empty")
	}
	for _, orbit := range cfg.Solver.Orbits {
		if orbit < 0 {
			return errors.Wrapf(route.ErrInvalidInput, "solver.orbits: %d is negative", orbit)
		}
	}
	if cfg.Detour.MaxDeviations < 0 {
		return errors.Wrap(route.ErrInvalidInput, "detour.max_deviations must be >= 0")
	}
	if cfg.Solver.Src != "" && cfg.Solver.Src == cfg.Solver.Snk {
		return errors.Wrapf(route.ErrInvalidInput, "solver.src and solver.snk are both %q", cfg.Solver.Src)
	}
	if ep := cfg.Oracle.Endpoint; ep != "" && !strings.HasPrefix(ep, remote.UnixScheme) &&
		!strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
		return errors.Wrapf(route.ErrInvalidInput, "oracle.endpoint %q is not an http or unix endpoint", ep)
	}
	if cfg.Report.Dir != "" && cfg.Report.Prefix == "" {
		return errors.Wrap(route.ErrInvalidInput, "report.prefix must be set when report.dir is")
	}
	return nil
}
