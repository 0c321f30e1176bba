package presets

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"pixshop/internal/collage"
	"pixshop/internal/domain"
)

// Category groups presets the way the editor panels show them.
type Category string

const (
	CategoryGenerate   Category = "generate"
	CategoryFilter     Category = "filter"
	CategoryAdjustment Category = "adjustment"
	CategoryLighting   Category = "lighting"
	CategoryScene      Category = "scene"
	CategoryCompose    Category = "compose"
	CategoryCollage    Category = "collage"
)

// Preset is a named, ready-made instruction for one operation.
type Preset struct {
	Name      string           `json:"name"`
	Category  Category         `json:"category"`
	Operation domain.Operation `json:"operation"`
	Prompt    string           `json:"prompt"`
}

var builtin = []Preset{
	{Name: "Photorealistic", Category: CategoryGenerate, Operation: domain.OpTextToImage, Prompt: "A photorealistic close-up portrait of an elderly Japanese ceramicist, his weathered hands shaping a clay pot. The scene is illuminated by soft, natural window light, creating a serene, focused atmosphere. Captured with a 85mm f/1.8 lens, emphasizing the fine wrinkles and textures of his skin and the clay."},
	{Name: "Sticker", Category: CategoryGenerate, Operation: domain.OpTextToImage, Prompt: "A kawaii-style sticker of a happy red panda, featuring big expressive eyes and a fluffy tail. The design should have thick, bold outlines and simple, cel-shaded coloring. The background must be transparent."},
	{Name: "Add Text", Category: CategoryGenerate, Operation: domain.OpTextToImage, Prompt: "Create a modern, minimalist logo for a coffee shop called 'The Daily Grind' in a clean, sans-serif font. The design should be a simple black and white line art style, with a coffee cup icon integrated."},
	{Name: "Product Mockup", Category: CategoryGenerate, Operation: domain.OpTextToImage, Prompt: "A high-resolution, studio-lit product photograph of a minimalist ceramic coffee mug on a plain, light gray background. The lighting is a three-point softbox setup to eliminate shadows and highlight the smooth texture of the mug. The camera angle is a straight-on eye-level shot to showcase its simple, elegant form. Ultra-realistic, with sharp focus."},

	{Name: "Synthwave", Category: CategoryFilter, Operation: domain.OpStylize, Prompt: "Apply a vibrant 80s synthwave aesthetic with neon magenta and cyan glows, and subtle scan lines."},
	{Name: "Anime", Category: CategoryFilter, Operation: domain.OpStylize, Prompt: "Give the image a vibrant Japanese anime style, with bold outlines, cel-shading, and saturated colors."},
	{Name: "Lomo", Category: CategoryFilter, Operation: domain.OpStylize, Prompt: "Apply a Lomography-style cross-processing film effect with high-contrast, oversaturated colors, and dark vignetting."},
	{Name: "Hologram", Category: CategoryFilter, Operation: domain.OpStylize, Prompt: "Transform the image into a futuristic holographic projection with digital glitch effects and chromatic aberration."},

	{Name: "Blur Background", Category: CategoryAdjustment, Operation: domain.OpStylize, Prompt: "Apply a realistic depth-of-field effect, making the background blurry while keeping the main subject in sharp focus."},
	{Name: "Enhance Details", Category: CategoryAdjustment, Operation: domain.OpStylize, Prompt: "Slightly enhance the sharpness and details of the image without making it look unnatural."},
	{Name: "Warmer Light", Category: CategoryAdjustment, Operation: domain.OpStylize, Prompt: "Adjust the color temperature to give the image warmer, golden-hour style lighting."},
	{Name: "Studio Light", Category: CategoryAdjustment, Operation: domain.OpStylize, Prompt: "Add dramatic, professional studio lighting to the main subject."},

	{Name: "Golden Hour", Category: CategoryLighting, Operation: domain.OpStylize, Prompt: "Bathe the image in the warm, soft, golden light of a sunset, creating long, soft shadows."},
	{Name: "Neon Noir", Category: CategoryLighting, Operation: domain.OpStylize, Prompt: "Relight the image with dramatic, high-contrast neon lighting, with deep shadows and vibrant colors reminiscent of a noir film."},
	{Name: "Moonlight", Category: CategoryLighting, Operation: domain.OpStylize, Prompt: "Apply a cool, ethereal moonlight effect to the image, with soft, silvery highlights and deep blue shadows."},
	{Name: "Studio Softbox", Category: CategoryLighting, Operation: domain.OpStylize, Prompt: "Apply clean, professional studio lighting with a large softbox, creating soft, flattering light on the subject with minimal harsh shadows."},
	{Name: "Cinematic", Category: CategoryLighting, Operation: domain.OpStylize, Prompt: "Apply a cinematic color grade with teal in the shadows and orange/yellow in the highlights for a modern, filmic look."},

	{Name: "Superhero Comic", Category: CategoryScene, Operation: domain.OpSceneComposite, Prompt: "Place the subject in a dynamic superhero comic book panel, with dramatic action lines and bold colors."},
	{Name: "Outer Space", Category: CategoryScene, Operation: domain.OpSceneComposite, Prompt: "Place the subject in a realistic space suit floating in outer space, with a nebula and stars in the background."},
	{Name: "Cyberpunk City", Category: CategoryScene, Operation: domain.OpSceneComposite, Prompt: "Composite the subject into a neon-lit, rainy cyberpunk city street at night, with towering holographic advertisements."},
	{Name: "Enchanted Forest", Category: CategoryScene, Operation: domain.OpSceneComposite, Prompt: "Place the subject in a magical, enchanted forest at twilight, with glowing mushrooms and mystical light rays filtering through the trees."},
	{Name: "Wild West", Category: CategoryScene, Operation: domain.OpSceneComposite, Prompt: "Place the subject in a classic Wild West town showdown at high noon, with dusty streets and wooden saloons."},
	{Name: "Underwater", Category: CategoryScene, Operation: domain.OpSceneComposite, Prompt: "Place the subject in a breathtaking underwater kingdom, surrounded by bioluminescent coral reefs and ancient ruins."},
	{Name: "Post-Apocalyptic", Category: CategoryScene, Operation: domain.OpSceneComposite, Prompt: "Place the subject in a gritty, post-apocalyptic wasteland, with rusted structures and a dramatic, dusty sky."},
	{Name: "Fantasy Kingdom", Category: CategoryScene, Operation: domain.OpSceneComposite, Prompt: "Place the subject on a majestic balcony overlooking a sprawling fantasy kingdom, with castles and dragons in the distance."},

	{Name: "Composition", Category: CategoryCompose, Operation: domain.OpCompose, Prompt: "Create a new image by taking the main subject from the second image and placing it into the scene of the first image. Ensure the lighting, shadows, and perspective match for a realistic composite."},
	{Name: "Style Transfer", Category: CategoryCompose, Operation: domain.OpCompose, Prompt: "Transform the first image by applying the complete artistic style of the second image. Preserve the original composition of the first image but render it with the textures, color palette, and brushstrokes of the second."},
}

// Catalog indexes presets by operation and case-folded name.
type Catalog struct {
	presets []Preset
	index   map[domain.Operation]map[string]int
	fold    cases.Caser
}

// Default returns the built-in catalog including the collage styles.
func Default() *Catalog {
	all := append([]Preset(nil), builtin...)
	for _, s := range collage.DefaultStyles() {
		all = append(all, Preset{Name: s.Name, Category: CategoryCollage, Operation: domain.OpStylize, Prompt: s.Prompt})
	}
	return New(all)
}

// New builds a catalog. Every preset is listed; when two share an operation
// and name, Lookup resolves to the later one.
func New(presets []Preset) *Catalog {
	c := &Catalog{index: make(map[domain.Operation]map[string]int), fold: cases.Fold()}
	for _, p := range presets {
		byName, ok := c.index[p.Operation]
		if !ok {
			byName = make(map[string]int)
			c.index[p.Operation] = byName
		}
		byName[c.key(p.Name)] = len(c.presets)
		c.presets = append(c.presets, p)
	}
	return c
}

func (c *Catalog) key(name string) string {
	return c.fold.String(strings.TrimSpace(name))
}

// All returns every preset in catalog order.
func (c *Catalog) All() []Preset {
	return append([]Preset(nil), c.presets...)
}

// ByCategory returns the presets of one category in catalog order.
func (c *Catalog) ByCategory(cat Category) []Preset {
	var out []Preset
	for _, p := range c.presets {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// Lookup finds the preset named name for op. Collage styles are found under
// stylize.
func (c *Catalog) Lookup(op domain.Operation, name string) (Preset, bool) {
	byName, ok := c.index[op]
	if !ok {
		return Preset{}, false
	}
	i, ok := byName[c.key(name)]
	if !ok {
		return Preset{}, false
	}
	return c.presets[i], true
}

// Resolve returns the prompt of the named preset or an ErrInvalidRequest.
func (c *Catalog) Resolve(op domain.Operation, name string) (string, error) {
	p, ok := c.Lookup(op, name)
	if !ok {
		return "", fmt.Errorf("%w: no %s preset named %q", domain.ErrInvalidRequest, op, name)
	}
	return p.Prompt, nil
}
