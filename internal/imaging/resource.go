package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrMalformed is returned when bytes or metadata cannot be interpreted as an image payload.
	ErrMalformed = errors.New("imaging: malformed image payload")
	// ErrDecode is returned when an image cannot be rendered far enough to read its header.
	ErrDecode = errors.New("imaging: image could not be decoded")
)

// Resource is an immutable image blob with its mime type and a logical name.
// Edits never mutate a Resource; they yield a new one.
type Resource struct {
	name string
	mime string
	data []byte
}

// New validates and copies the given bytes into a Resource. When mime is empty
// the type is sniffed from the content.
func New(name, mime string, data []byte) (Resource, error) {
	if len(data) == 0 {
		return Resource{}, fmt.Errorf("%w: empty data", ErrMalformed)
	}
	mime = normalizeMIME(mime)
	if mime == "" {
		mime = normalizeMIME(mimetype.Detect(data).String())
	}
	if !strings.HasPrefix(mime, "image/") {
		return Resource{}, fmt.Errorf("%w: unsupported mime type %q", ErrMalformed, mime)
	}
	return Resource{
		name: strings.TrimSpace(name),
		mime: mime,
		data: append([]byte(nil), data...),
	}, nil
}

// Name returns the logical file name.
func (r Resource) Name() string { return r.name }

// MIMEType returns the normalized mime type, e.g. "image/png".
func (r Resource) MIMEType() string { return r.mime }

// Len reports the payload size in bytes.
func (r Resource) Len() int { return len(r.data) }

// IsZero reports whether the resource was never constructed.
func (r Resource) IsZero() bool { return len(r.data) == 0 }

// Bytes returns a copy of the payload.
func (r Resource) Bytes() []byte {
	return append([]byte(nil), r.data...)
}

// Equal reports whether both resources carry the same mime type and bytes.
func (r Resource) Equal(other Resource) bool {
	return r.mime == other.mime && bytes.Equal(r.data, other.data)
}

// WithName returns a copy of the resource under a different logical name.
func (r Resource) WithName(name string) Resource {
	return Resource{name: strings.TrimSpace(name), mime: r.mime, data: r.data}
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if mime == "image/jpg" {
		return "image/jpeg"
	}
	return mime
}

// ExtensionForMIME maps an image mime type to a file extension including the dot.
func ExtensionForMIME(mime string) string {
	switch normalizeMIME(mime) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
