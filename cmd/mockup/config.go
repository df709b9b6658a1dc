package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/mockup"
)

// config is the optional YAML configuration shared by all subcommands.
// Flags given on the command line override it.
//
//	assets: ./assets          # root for relative asset sources
//	gpu: true
//	gpuTimeout: 3s
//	interpolation: bilinear   # or nearest
//	logLevel: info            # debug, info, warn, error
//	export:
//	  scale: 1
//	watch:
//	  debounce: 200ms
type config struct {
	Assets        string        `yaml:"assets"`
	GPU           *bool         `yaml:"gpu"`
	GPUTimeout    time.Duration `yaml:"gpuTimeout"`
	Interpolation string        `yaml:"interpolation"`
	LogLevel      string        `yaml:"logLevel"`
	Export        struct {
		Scale float64 `yaml:"scale"`
	} `yaml:"export"`
	Watch struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"watch"`
}

func defaultConfig() config {
	var c config
	c.Assets = "."
	c.LogLevel = "info"
	c.Export.Scale = 1
	return c
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c config) interpolation() (mockup.Interpolation, error) {
	switch strings.ToLower(c.Interpolation) {
	case "", "bilinear":
		return mockup.InterpBilinear, nil
	case "nearest":
		return mockup.InterpNearest, nil
	default:
		return 0, fmt.Errorf("config: unknown interpolation %q", c.Interpolation)
	}
}

func (c config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: %w", err)
	}
	return l, nil
}

// compositorOptions translates the configuration into Compositor options.
func (c config) compositorOptions() ([]mockup.Option, error) {
	interp, err := c.interpolation()
	if err != nil {
		return nil, err
	}
	opts := []mockup.Option{mockup.WithInterpolation(interp)}
	if c.GPU != nil && !*c.GPU {
		opts = append(opts, mockup.WithoutGPU())
	}
	if c.GPUTimeout > 0 {
		opts = append(opts, mockup.WithGPUTimeout(c.GPUTimeout))
	}
	return opts, nil
}

// commonFlags are registered on every subcommand.
type commonFlags struct {
	config string
	noGPU  bool
	debug  bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "YAML configuration file")
	fs.BoolVar(&f.noGPU, "nogpu", false, "use the CPU renderer only")
	fs.BoolVar(&f.debug, "v", false, "debug logging")
}

// setup loads the configuration, applies flag overrides and installs the
// logger.
func (f *commonFlags) setup() (config, error) {
	c, err := loadConfig(f.config)
	if err != nil {
		return c, err
	}
	if f.noGPU {
		off := false
		c.GPU = &off
	}
	if f.debug {
		c.LogLevel = "debug"
	}
	level, err := c.level()
	if err != nil {
		return c, err
	}
	mockup.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return c, nil
}

// snapFlags collects repeated -snap key=path flags.
type snapFlags map[string]string

func (s snapFlags) String() string {
	parts := make([]string, 0, len(s))
	for k, v := range s {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (s snapFlags) Set(v string) error {
	key, path, ok := strings.Cut(v, "=")
	if !ok || key == "" || path == "" {
		return fmt.Errorf("want key=path, got %q", v)
	}
	s[key] = path
	return nil
}
