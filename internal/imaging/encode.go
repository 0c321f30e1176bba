package imaging

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Payload is the provider-neutral inline form of an image: mime type plus
// standard base64 data.
type Payload struct {
	MIMEType string
	Data     string
}

// Encode converts a Resource into its inline payload.
func Encode(r Resource) (Payload, error) {
	if r.IsZero() {
		return Payload{}, fmt.Errorf("%w: empty resource", ErrMalformed)
	}
	if !strings.HasPrefix(r.mime, "image/") {
		return Payload{}, fmt.Errorf("%w: unsupported mime type %q", ErrMalformed, r.mime)
	}
	return Payload{
		MIMEType: r.mime,
		Data:     base64.StdEncoding.EncodeToString(r.data),
	}, nil
}

// Decode is the inverse of Encode. Padded and unpadded base64 are accepted.
func Decode(mimeType, data, name string) (Resource, error) {
	raw, err := decodeBase64(data)
	if err != nil {
		return Resource{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(mimeType) == "" {
		return Resource{}, fmt.Errorf("%w: missing mime type", ErrMalformed)
	}
	return New(name, mimeType, raw)
}

// DataURI renders the resource as a base64 data URI.
func (r Resource) DataURI() string {
	if r.IsZero() {
		return ""
	}
	return "data:" + r.mime + ";base64," + base64.StdEncoding.EncodeToString(r.data)
}

// ParseDataURI decodes a "data:<mime>[;param]*;base64,<data>" string into a
// Resource. Parameters between the mime type and base64 are ignored.
func ParseDataURI(uri, name string) (Resource, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "data:") {
		return Resource{}, fmt.Errorf("%w: not a data uri", ErrMalformed)
	}
	header, data, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return Resource{}, fmt.Errorf("%w: invalid data uri", ErrMalformed)
	}
	params := strings.Split(header, ";")
	mime := params[0]
	if len(params) < 2 || !strings.EqualFold(strings.TrimSpace(params[len(params)-1]), "base64") {
		return Resource{}, fmt.Errorf("%w: data uri is not base64 encoded", ErrMalformed)
	}
	if strings.TrimSpace(mime) == "" {
		return Resource{}, fmt.Errorf("%w: could not parse mime type from data uri", ErrMalformed)
	}
	return Decode(mime, data, name)
}

func decodeBase64(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, fmt.Errorf("empty base64 data")
	}
	if strings.HasSuffix(data, "=") {
		return base64.StdEncoding.DecodeString(data)
	}
	return base64.RawStdEncoding.DecodeString(data)
}
