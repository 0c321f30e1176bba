package domain

import "pixshop/internal/imaging"

// Source tells which provider produced a successful result.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
)

// Result is either a produced image or a Failure, never both. The zero value
// is an EmptyResponse failure.
type Result struct {
	image    imaging.Resource
	source   Source
	provider string
	failure  *Failure
}

// Succeeded wraps an image produced by provider.
func Succeeded(img imaging.Resource, source Source, provider string) Result {
	if img.IsZero() {
		return Failed(NewFailure(Malformed, provider, "provider returned an empty image", nil))
	}
	return Result{image: img, source: source, provider: provider}
}

// Failed wraps a failure. A nil failure is treated as EmptyResponse.
func Failed(f *Failure) Result {
	if f == nil {
		f = NewFailure(EmptyResponse, "", "", nil)
	}
	return Result{failure: f, provider: f.Provider}
}

// OK reports whether the result carries an image.
func (r Result) OK() bool { return r.failure == nil && !r.image.IsZero() }

// Image returns the produced image and true on success.
func (r Result) Image() (imaging.Resource, bool) {
	if !r.OK() {
		return imaging.Resource{}, false
	}
	return r.image, true
}

// Failure returns the failure, or nil on success.
func (r Result) Failure() *Failure {
	if r.OK() {
		return nil
	}
	if r.failure == nil {
		return NewFailure(EmptyResponse, r.provider, "", nil)
	}
	return r.failure
}

// Err is Failure as an error, nil on success.
func (r Result) Err() error {
	if f := r.Failure(); f != nil {
		return f
	}
	return nil
}

func (r Result) Source() Source   { return r.source }
func (r Result) Provider() string { return r.provider }

// WithSource retags a successful result.
func (r Result) WithSource(source Source) Result {
	if !r.OK() {
		return r
	}
	r.source = source
	return r
}
