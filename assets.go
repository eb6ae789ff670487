package vkcube

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

//Assets is everything read from disk before the first Vulkan call.
type Assets struct {
	VertexShader   []byte
	FragmentShader []byte
	Pixels         []byte
	Width          int
	Height         int
}

//LoadAssets reads both shaders and decodes the texture concurrently. The first failure
//cancels the loads that have not started yet and is returned.
func LoadAssets(ctx context.Context, cfg Config) (*Assets, error) {
	g, ctx := errgroup.WithContext(ctx)
	assets := &Assets{}

	g.Go(func() (err error) {
		if err := ctx.Err(); err != nil {
			return err
		}
		assets.VertexShader, err = LoadShaderCode(cfg.VertexShader)
		return errors.Wrap(err, "vertex shader")
	})
	g.Go(func() (err error) {
		if err := ctx.Err(); err != nil {
			return err
		}
		assets.FragmentShader, err = LoadShaderCode(cfg.FragmentShader)
		return errors.Wrap(err, "fragment shader")
	})
	g.Go(func() (err error) {
		if err := ctx.Err(); err != nil {
			return err
		}
		assets.Pixels, assets.Width, assets.Height, err = DecodeImageFile(cfg.Texture)
		return errors.Wrap(err, "texture")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assets, nil
}
