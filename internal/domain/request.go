package domain

import (
	"fmt"
	"strings"

	"pixshop/internal/imaging"
)

// Dimensions is a pixel size.
type Dimensions = imaging.Dimensions

// Hotspot is the pixel the user clicked for a localized edit.
type Hotspot struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Request describes one user action. It is built by the New* constructors,
// which validate it, and cannot be modified afterwards.
type Request struct {
	op          Operation
	instruction string
	images      []imaging.Resource
	hotspot     *Hotspot
	source      Dimensions
	target      Dimensions
}

// Input is the loosely typed form of a request as received from a transport.
type Input struct {
	Prompt  string
	Images  []imaging.Resource
	Hotspot *Hotspot
}

// Build validates in against the rules of op and returns the request.
func Build(op Operation, in Input) (Request, error) {
	switch op {
	case OpTextToImage:
		if len(in.Images) != 0 {
			return Request{}, fmt.Errorf("%w: %s takes no images, got %d", ErrMissingImage, op, len(in.Images))
		}
		return NewTextToImage(in.Prompt)
	case OpCompose:
		return NewCompose(in.Prompt, in.Images...)
	}
	if !op.Valid() {
		return Request{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, op)
	}
	if len(in.Images) != 1 {
		return Request{}, fmt.Errorf("%w: %s takes exactly one image, got %d", ErrMissingImage, op, len(in.Images))
	}
	img := in.Images[0]
	switch op {
	case OpLocalizedEdit:
		if in.Hotspot == nil {
			return Request{}, ErrMissingHotspot
		}
		return NewLocalizedEdit(img, in.Prompt, *in.Hotspot)
	case OpStylize:
		return NewStylize(img, in.Prompt)
	case OpExpand:
		return NewExpand(img, in.Prompt)
	case OpRemoveBackground:
		return NewRemoveBackground(img)
	case OpSceneComposite:
		return NewSceneComposite(img, in.Prompt)
	case OpUpscale:
		return NewUpscale(img)
	}
	return Request{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, op)
}

func NewTextToImage(prompt string) (Request, error) {
	prompt, err := requirePrompt(prompt)
	if err != nil {
		return Request{}, err
	}
	return Request{op: OpTextToImage, instruction: prompt}, nil
}

func NewLocalizedEdit(img imaging.Resource, prompt string, hotspot Hotspot) (Request, error) {
	prompt, err := requirePrompt(prompt)
	if err != nil {
		return Request{}, err
	}
	if err := requireImages(OpLocalizedEdit, img); err != nil {
		return Request{}, err
	}
	if hotspot.X < 0 || hotspot.Y < 0 {
		return Request{}, fmt.Errorf("%w: hotspot (%d, %d) is outside the image", ErrInvalidRequest, hotspot.X, hotspot.Y)
	}
	h := hotspot
	return Request{op: OpLocalizedEdit, instruction: prompt, images: []imaging.Resource{img}, hotspot: &h}, nil
}

func NewStylize(img imaging.Resource, prompt string) (Request, error) {
	return singleImage(OpStylize, img, prompt)
}

func NewExpand(img imaging.Resource, prompt string) (Request, error) {
	return singleImage(OpExpand, img, prompt)
}

func NewSceneComposite(img imaging.Resource, prompt string) (Request, error) {
	return singleImage(OpSceneComposite, img, prompt)
}

// NewRemoveBackground takes no instruction; the operation is fully described
// by its policy.
func NewRemoveBackground(img imaging.Resource) (Request, error) {
	if err := requireImages(OpRemoveBackground, img); err != nil {
		return Request{}, err
	}
	return Request{op: OpRemoveBackground, images: []imaging.Resource{img}}, nil
}

// NewUpscale measures img and targets exactly twice its size. A source that
// cannot be decoded yields a DecodeFailure.
func NewUpscale(img imaging.Resource) (Request, error) {
	if err := requireImages(OpUpscale, img); err != nil {
		return Request{}, err
	}
	dims, err := imaging.MeasureDimensions(img)
	if err != nil {
		return Request{}, NewFailure(DecodeFailure, "", "Could not load image to get dimensions.", err)
	}
	return Request{
		op:     OpUpscale,
		images: []imaging.Resource{img},
		source: dims,
		target: dims.Double(),
	}, nil
}

// NewCompose requires exactly two images: the base first, the second as
// subject or style reference.
func NewCompose(prompt string, images ...imaging.Resource) (Request, error) {
	if len(images) != 2 {
		return Request{}, fmt.Errorf("%w: %s needs exactly two images, got %d", ErrMissingImage, OpCompose, len(images))
	}
	prompt, err := requirePrompt(prompt)
	if err != nil {
		return Request{}, err
	}
	if err := requireImages(OpCompose, images...); err != nil {
		return Request{}, err
	}
	return Request{op: OpCompose, instruction: prompt, images: append([]imaging.Resource(nil), images...)}, nil
}

func singleImage(op Operation, img imaging.Resource, prompt string) (Request, error) {
	prompt, err := requirePrompt(prompt)
	if err != nil {
		return Request{}, err
	}
	if err := requireImages(op, img); err != nil {
		return Request{}, err
	}
	return Request{op: op, instruction: prompt, images: []imaging.Resource{img}}, nil
}

func requirePrompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrMissingPrompt
	}
	return prompt, nil
}

func requireImages(op Operation, images ...imaging.Resource) error {
	if len(images) != op.ImageCount() {
		return fmt.Errorf("%w: %s needs %d image(s), got %d", ErrMissingImage, op, op.ImageCount(), len(images))
	}
	for i, img := range images {
		if img.IsZero() {
			return fmt.Errorf("%w: %s image %d is empty", ErrMissingImage, op, i+1)
		}
	}
	return nil
}

func (r Request) Operation() Operation { return r.op }

// Instruction is the user's free text, trimmed. Empty for remove-background
// and upscale.
func (r Request) Instruction() string { return r.instruction }

// Images returns the input images in order.
func (r Request) Images() []imaging.Resource {
	return append([]imaging.Resource(nil), r.images...)
}

// Hotspot reports the localized-edit focus point.
func (r Request) Hotspot() (Hotspot, bool) {
	if r.hotspot == nil {
		return Hotspot{}, false
	}
	return *r.hotspot, true
}

// SourceSize is the measured size of the upscale source.
func (r Request) SourceSize() Dimensions { return r.source }

// TargetSize is the required upscale output size.
func (r Request) TargetSize() Dimensions { return r.target }

// IsZero reports whether r was never built.
func (r Request) IsZero() bool { return r.op == "" }
