package vkcube

import (
	"context"

	"github.com/pkg/errors"
)

//Run loads the assets, opens the window and renders the cuboid until the window is closed.
//It must be called from the main OS thread.
func Run(ctx context.Context, cfg Config, logs *Loggers) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logs == nil {
		logs = DiscardLoggers()
	}

	assets, err := LoadAssets(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "load assets")
	}
	logs.Info.Printf("texture %dx%d, shaders %d+%d bytes", assets.Width, assets.Height,
		len(assets.VertexShader), len(assets.FragmentShader))

	surface, err := NewGlfwSurface(cfg.Title, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer surface.Destroy()

	renderer, err := NewRenderer(cfg, surface, assets, logs)
	if err != nil {
		return errors.Wrap(err, "init renderer")
	}
	defer renderer.Destroy()

	return renderer.Loop()
}
