// Package config loads viewer settings from TOML or YAML files. Fields a
// file leaves out keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Limits applied by Validate.
const (
	MinWindowSize = 64
	MaxWindowSize = 8192
	MinFOV        = 10
	MaxFOV        = 120
)

// Window describes the viewer window.
type Window struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
}

// Camera describes the orbiting camera.
type Camera struct {
	Eye    mgl32.Vec3 `toml:"eye" yaml:"eye"`
	Target mgl32.Vec3 `toml:"target" yaml:"target"`
	// FOV is the vertical field of view in degrees.
	FOV  float32 `toml:"fov" yaml:"fov"`
	Near float32 `toml:"near" yaml:"near"`
	Far  float32 `toml:"far" yaml:"far"`
	// OrbitSpeed is in radians per second; zero holds the camera still.
	OrbitSpeed float32 `toml:"orbit_speed" yaml:"orbit_speed"`
	// Frame moves the camera back far enough to see the whole scene.
	Frame bool `toml:"frame" yaml:"frame"`
}

// Render holds drawing and diagnostics options.
type Render struct {
	Background mgl32.Vec3 `toml:"background" yaml:"background"`
	// CheckSurfaces logs how far each mesh strays from its analytic surface.
	CheckSurfaces bool    `toml:"check_surfaces" yaml:"check_surfaces"`
	Tolerance     float64 `toml:"tolerance" yaml:"tolerance"`
}

// Settings is the complete viewer configuration.
type Settings struct {
	Window Window `toml:"window" yaml:"window"`
	Camera Camera `toml:"camera" yaml:"camera"`
	Render Render `toml:"render" yaml:"render"`

	// Script is the scene script to evaluate. Empty selects the demo scene.
	Script string `toml:"script" yaml:"script"`
	// EvalTimeout bounds script evaluation, in seconds.
	EvalTimeout float64 `toml:"eval_timeout" yaml:"eval_timeout"`
	LogLevel    string  `toml:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "primview",
			VSync:  true,
		},
		Camera: Camera{
			Eye:        mgl32.Vec3{6, -6, 4},
			Target:     mgl32.Vec3{0, 0, 0},
			FOV:        45,
			Near:       0.1,
			Far:        100,
			OrbitSpeed: 0.3,
			Frame:      true,
		},
		Render: Render{
			Background: mgl32.Vec3{0.08, 0.08, 0.1},
			Tolerance:  1e-4,
		},
		EvalTimeout: 5,
		LogLevel:    "info",
	}
}

// Load reads settings from path, choosing the decoder by extension. An
// empty path or a missing file yields the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := decode(path, data, &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

func decode(path string, data []byte, s *Settings) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(s); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and leaves the defaults.
		if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: %s: unsupported extension %q (want .toml, .yaml or .yml)", path, ext)
	}
	return nil
}

// Save writes s to path in the format its extension names.
func Save(path string, s Settings) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		data, err = toml.Marshal(s)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		return fmt.Errorf("config: %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate clamps out-of-range values in place and rejects settings that
// cannot be repaired.
func (s *Settings) Validate() error {
	s.Window.Width = lo.Clamp(s.Window.Width, MinWindowSize, MaxWindowSize)
	s.Window.Height = lo.Clamp(s.Window.Height, MinWindowSize, MaxWindowSize)
	s.Camera.FOV = lo.Clamp(s.Camera.FOV, MinFOV, MaxFOV)

	def := Default()
	if s.Camera.Near <= 0 {
		s.Camera.Near = def.Camera.Near
	}
	if s.Camera.Far <= s.Camera.Near {
		s.Camera.Far = max(def.Camera.Far, s.Camera.Near*1000)
	}
	if s.Camera.Eye == s.Camera.Target {
		return errors.New("camera eye and target coincide")
	}
	if s.EvalTimeout <= 0 {
		s.EvalTimeout = def.EvalTimeout
	}
	if s.Render.Tolerance <= 0 {
		s.Render.Tolerance = def.Render.Tolerance
	}
	for i, c := range s.Render.Background {
		s.Render.Background[i] = lo.Clamp(c, 0, 1)
	}

	if _, err := s.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (s Settings) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s.LogLevel, err)
	}
	return l, nil
}

// Timeout returns EvalTimeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.EvalTimeout * float64(time.Second))
}
