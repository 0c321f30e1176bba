package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int
	Height int
}

// Double returns the dimensions scaled by two on both axes.
func (d Dimensions) Double() Dimensions {
	return Dimensions{Width: d.Width * 2, Height: d.Height * 2}
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// MeasureDimensions reads the image header to obtain its pixel size.
func MeasureDimensions(r Resource) (Dimensions, error) {
	if r.IsZero() {
		return Dimensions{}, fmt.Errorf("%w: empty resource", ErrDecode)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(r.data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: invalid size %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
