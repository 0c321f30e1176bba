package collage

import (
	"strings"
	"time"

	"pixshop/internal/imaging"
	"pixshop/pkg/zip"
)

// Archive packs the outcome into a zip with one file per style.
func (o Outcome) Archive(at time.Time) ([]byte, error) {
	assets := make([]zip.Asset, 0, len(o.Entries))
	for _, e := range o.Entries {
		assets = append(assets, zip.Asset{
			Filename: fileName(e.Style, e.Image),
			MIME:     e.Image.MIMEType(),
			Data:     e.Image.Bytes(),
		})
	}
	return zip.ArchiveAssets(assets, at)
}

// fileName turns "80s Glam Rock" into "80s-glam-rock.png".
func fileName(style string, img imaging.Resource) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(style)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "style"
	}
	ext := imaging.ExtensionForMIME(img.MIMEType())
	if ext == "" {
		ext = ".png"
	}
	return slug + ext
}
