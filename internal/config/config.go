// Package config holds the window, shader and logging settings of the
// triangle renderer.
package config

import (
	"bytes"
	"log/slog"
	"os"
	"strconv"
	"strings"

	mgl32 "github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Environment variables read by Load.
const (
	EnvConfig     = "TRIANGLE_CONFIG"
	EnvValidation = "VK_VALIDATION"
	EnvSize       = "TRIANGLE_SIZE"
	EnvLogLevel   = "TRIANGLE_LOG_LEVEL"
)

type Config struct {
	Title      string `toml:"title"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Resizable  bool   `toml:"resizable"`
	Validation bool   `toml:"validation"`

	// Compiled SPIR-V. The defaults under shaders/ are produced by
	// `go generate` from the GLSL sources and require glslc.
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`

	ClearColor mgl32.Vec4 `toml:"clear_color"`
	LogLevel   string     `toml:"log_level"`
}

func Default() Config {
	return Config{
		Title:          "Vulkan",
		Width:          800,
		Height:         600,
		Resizable:      true,
		Validation:     true,
		VertexShader:   "shaders/vert.spv",
		FragmentShader: "shaders/frag.spv",
		ClearColor:     mgl32.Vec4{0, 0, 0, 1},
		LogLevel:       "info",
	}
}

// Load returns the defaults overlaid with the TOML file at path, if path is
// not empty, and then with the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if val := os.Getenv(EnvValidation); val != "" {
		c.Validation = validationEnabled(val)
	}
	if val := os.Getenv(EnvSize); val != "" {
		w, h, err := parseSize(val)
		if err != nil {
			return errors.Wrap(err, EnvSize)
		}
		c.Width, c.Height = w, h
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}
	return nil
}

// validationEnabled treats anything but an explicit false as on.
func validationEnabled(val string) bool {
	switch val {
	case "0", "false", "False", "FALSE":
		return false
	default:
		return true
	}
}

func parseSize(val string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(val), "x")
	if !ok {
		return 0, 0, errors.Errorf("size %q is not WxH", val)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "size %q", val)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "size %q", val)
	}
	return w, h, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return errors.New("shader paths must not be empty")
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return errors.Errorf("clear color component %d is %g, want [0,1]", i, v)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return level, nil
}
