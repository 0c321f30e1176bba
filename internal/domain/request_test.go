package domain

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixshop/internal/imaging"
)

func testImage(t *testing.T, w, h int) imaging.Resource {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	r, err := imaging.New("source.png", "image/png", buf.Bytes())
	require.NoError(t, err)
	return r
}

func TestNewComposeRequiresTwoImages(t *testing.T) {
	img := testImage(t, 2, 2)

	_, err := NewCompose("put them together")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewCompose("put them together", img)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewCompose("put them together", img, img, img)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	req, err := NewCompose("put them together", img, img)
	require.NoError(t, err)
	assert.Equal(t, OpCompose, req.Operation())
	assert.Len(t, req.Images(), 2)
}

func TestNewUpscaleDoublesMeasuredSize(t *testing.T) {
	req, err := NewUpscale(testImage(t, 800, 600))
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 800, Height: 600}, req.SourceSize())
	assert.Equal(t, Dimensions{Width: 1600, Height: 1200}, req.TargetSize())
}

func TestNewUpscaleDecodeFailure(t *testing.T) {
	broken, err := imaging.New("broken.png", "image/png", []byte("nope"))
	require.NoError(t, err)

	_, err = NewUpscale(broken)
	require.Error(t, err)
	assert.Equal(t, DecodeFailure, KindOf(err))
	assert.True(t, errors.Is(err, imaging.ErrDecode))
}

func TestBuildValidatesImageCount(t *testing.T) {
	img := testImage(t, 4, 4)
	tests := []struct {
		name    string
		op      Operation
		in      Input
		wantErr error
	}{
		{name: "text to image with image", op: OpTextToImage, in: Input{Prompt: "cat", Images: []imaging.Resource{img}}, wantErr: ErrInvalidRequest},
		{name: "text to image", op: OpTextToImage, in: Input{Prompt: "cat"}},
		{name: "stylize without image", op: OpStylize, in: Input{Prompt: "anime"}, wantErr: ErrInvalidRequest},
		{name: "stylize two images", op: OpStylize, in: Input{Prompt: "anime", Images: []imaging.Resource{img, img}}, wantErr: ErrInvalidRequest},
		{name: "stylize", op: OpStylize, in: Input{Prompt: "anime", Images: []imaging.Resource{img}}},
		{name: "edit without hotspot", op: OpLocalizedEdit, in: Input{Prompt: "remove", Images: []imaging.Resource{img}}, wantErr: ErrMissingHotspot},
		{name: "edit", op: OpLocalizedEdit, in: Input{Prompt: "remove", Images: []imaging.Resource{img}, Hotspot: &Hotspot{X: 1, Y: 2}}},
		{name: "remove background ignores prompt", op: OpRemoveBackground, in: Input{Images: []imaging.Resource{img}}},
		{name: "expand without prompt", op: OpExpand, in: Input{Images: []imaging.Resource{img}}, wantErr: ErrMissingPrompt},
		{name: "compose one image", op: OpCompose, in: Input{Prompt: "merge", Images: []imaging.Resource{img}}, wantErr: ErrInvalidRequest},
		{name: "unknown", op: Operation("teleport"), in: Input{Prompt: "x", Images: []imaging.Resource{img}}, wantErr: ErrInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := Build(tc.op, tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.op, req.Operation())
			assert.Len(t, req.Images(), tc.op.ImageCount())
		})
	}
}

func TestLocalizedEditKeepsHotspot(t *testing.T) {
	req, err := NewLocalizedEdit(testImage(t, 10, 10), "  remove the mole  ", Hotspot{X: 3, Y: 7})
	require.NoError(t, err)
	h, ok := req.Hotspot()
	require.True(t, ok)
	assert.Equal(t, Hotspot{X: 3, Y: 7}, h)
	assert.Equal(t, "remove the mole", req.Instruction())

	_, err = NewLocalizedEdit(testImage(t, 10, 10), "x", Hotspot{X: -1})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRequestImagesAreDetached(t *testing.T) {
	img := testImage(t, 2, 2)
	req, err := NewStylize(img, "pop art")
	require.NoError(t, err)
	images := req.Images()
	images[0] = imaging.Resource{}
	assert.False(t, req.Images()[0].IsZero())
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation(" Upscale ")
	require.NoError(t, err)
	assert.Equal(t, OpUpscale, op)

	op, err = ParseOperation("compose")
	require.NoError(t, err)
	assert.Equal(t, OpCompose, op)

	_, err = ParseOperation("collage")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Len(t, Operations(), 8)
}

func TestOperationOutputNameAndMessage(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "removed-bg-1700000000123.png", OpRemoveBackground.OutputName(at))
	assert.Equal(t, "upscaled-1700000000123.png", OpUpscale.OutputName(at))

	err := NewFailure(AllProvidersExhausted, "gemini", "Request was blocked. Reason: SAFETY.", nil)
	assert.Equal(t, "Failed to upscale the image. Request was blocked. Reason: SAFETY.", OpUpscale.UserMessage(err))
	assert.Equal(t, "Failed to compose images. An unknown error occurred.", OpCompose.UserMessage(nil))
}
