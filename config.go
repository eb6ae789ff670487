package vkcube

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

//MaxFramesInFlight is the number of frame slots the scheduler rotates through.
const MaxFramesInFlight = 2

//Config holds the startup knobs of the renderer. Corresponds to a TOML document
//whose keys match the struct tags.
type Config struct {
	Title          string `toml:"title"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
	Texture        string `toml:"texture"`
	Validation     bool   `toml:"validation"`
	FrontFaceCCW   bool   `toml:"front_face_ccw"`
	LogDir         string `toml:"log_dir"`
}

func DefaultConfig() Config {
	return Config{
		Title:          "vkcube",
		Width:          800,
		Height:         600,
		VertexShader:   "shaders/vert.spv",
		FragmentShader: "shaders/frag.spv",
		Texture:        "textures/texture.png",
		Validation:     true,
		FrontFaceCCW:   true,
	}
}

//LoadConfig overlays the TOML file at path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

//LoadConfigIfExists behaves like LoadConfig but treats a missing file as the defaults.
func LoadConfigIfExists(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("config: invalid window size %dx%d", c.Width, c.Height)
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return errors.New("config: shader paths must be set")
	}
	if c.Texture == "" {
		return errors.New("config: texture path must be set")
	}
	return nil
}
