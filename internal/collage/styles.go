package collage

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"pixshop/internal/domain"
)

// Style is one named look applied to the source image.
type Style struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

var defaultStyles = []Style{
	{Name: "Anime", Prompt: "A vibrant Japanese anime style, with bold outlines, cel-shading, and saturated colors."},
	{Name: "80s Glam Rock", Prompt: "An 80s glam rock album cover aesthetic, with neon lights, gritty textures, and a dramatic, high-contrast look."},
	{Name: "Sci-Fi Future", Prompt: "A futuristic sci-fi scene from 100 years in the future, with holographic elements, chrome details, and a cyberpunk feel."},
	{Name: "Pencil Sketch", Prompt: "A detailed black and white pencil sketch, with cross-hatching and realistic shading."},
	{Name: "Impressionism", Prompt: "An impressionist painting in the style of Monet, with visible brushstrokes and a focus on light and color."},
	{Name: "Pop Art", Prompt: "A vibrant pop art piece in the style of Andy Warhol, with bold, contrasting colors, and a silkscreen effect."},
	{Name: "Steampunk", Prompt: "A steampunk-inspired image, with gears, cogs, brass details, and a Victorian-era industrial feel."},
	{Name: "Claymation", Prompt: "A charming claymation (plasticine) style, with soft textures and a handmade, stop-motion look."},
	{Name: "Vintage Comic", Prompt: "A classic vintage comic book style from the 1960s, with halftone dots (Ben-Day dots), bold inks, and aged paper texture."},
	{Name: "Low-Poly", Prompt: "A modern low-poly geometric art style, where the image is constructed from colorful triangles and polygons."},
}

// DefaultStyles returns the ten collage styles in display order.
func DefaultStyles() []Style {
	return append([]Style(nil), defaultStyles...)
}

// SelectStyles picks styles by name, case-insensitively, keeping the default
// order. No names selects every style.
func SelectStyles(names []string) ([]Style, error) {
	if len(names) == 0 {
		return DefaultStyles(), nil
	}
	fold := cases.Fold()
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		key := fold.String(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		wanted[key] = true
	}
	var out []Style
	for _, s := range defaultStyles {
		key := fold.String(s.Name)
		if wanted[key] {
			out = append(out, s)
			delete(wanted, key)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for k := range wanted {
			unknown = append(unknown, k)
		}
		return nil, fmt.Errorf("%w: unknown collage style(s): %s", domain.ErrInvalidRequest, strings.Join(unknown, ", "))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no collage styles selected", domain.ErrInvalidRequest)
	}
	return out, nil
}
