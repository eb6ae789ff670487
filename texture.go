package vkcube

import (
	"bufio"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	_ "golang.org/x/image/bmp"
)

//DecodeImageFile decodes a PNG, JPEG, BMP or PPM file into tightly packed RGBA8 pixels.
func DecodeImageFile(path string) (pixels []byte, width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, "open texture")
	}
	defer f.Close()
	return DecodeImage(bufio.NewReader(f), filepath.Ext(path))
}

//DecodeImage decodes r. ext selects the PPM decoder; everything else goes through the
//registered image formats.
func DecodeImage(r io.Reader, ext string) (pixels []byte, width, height int, err error) {
	var img image.Image
	if strings.EqualFold(ext, ".ppm") {
		img, err = ppm.Decode(r)
	} else {
		img, _, err = image.Decode(r)
	}
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, "decode texture")
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return rgba.Pix, bounds.Dx(), bounds.Dy(), nil
}

//CoreTexture is a sampled image plus the sampler the fragment stage reads it through.
type CoreTexture struct {
	device  vk.Device
	Image   *CoreImage
	Sampler vk.Sampler
}

func NewCoreTexture(device *CoreDevice, uploader *CoreUploader, pixels []byte, width, height int) (*CoreTexture, error) {
	img, err := uploader.UploadImage(pixels, width, height)
	if err != nil {
		return nil, err
	}
	tex := &CoreTexture{device: device.Device(), Image: img}
	ret := vk.CreateSampler(device.Device(), &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           device.MaxAnisotropy(),
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}, nil, &tex.Sampler)
	if isError(ret) {
		img.Destroy()
		return nil, errors.Wrap(NewError(ret), "create sampler")
	}
	return tex, nil
}

func (t *CoreTexture) Destroy() {
	if t == nil || t.device == nil {
		return
	}
	vk.DestroySampler(t.device, t.Sampler, nil)
	t.Sampler = vk.NullSampler
	t.Image.Destroy()
	t.device = nil
}
