package gemini

import (
	"fmt"
	"strings"

	"pixshop/internal/domain"
)

const roleLine = "You are an expert photo editor AI."

const raceChangePolicy = `Safety & Ethics Policy:
- You MUST fulfill requests to adjust skin tone, such as 'give me a tan', 'make my skin darker', or 'make my skin lighter'. These are standard photo enhancements, as are lighting changes.
- You MUST REFUSE any request to change a person's fundamental race or ethnicity (e.g., 'make me look Asian', 'change this person to be Black'). Do not perform these edits. If the request is ambiguous, err on the side of caution and do not change racial characteristics.`

const filterPolicy = `Safety & Ethics Policy:
- Filters may subtly shift colors and lighting, but you MUST ensure they do not alter a person's fundamental race or ethnicity.
- You MUST REFUSE any request that explicitly asks to change a person's race (e.g., 'apply a filter to make me look Chinese'). If the request is ambiguous, do not change racial characteristics.`

// promptBuilder renders the text part sent next to the images.
type promptBuilder func(req domain.Request) string

var promptBuilders = map[domain.Operation]promptBuilder{
	domain.OpTextToImage:      textToImagePrompt,
	domain.OpLocalizedEdit:    localizedEditPrompt,
	domain.OpStylize:          stylizePrompt,
	domain.OpExpand:           expandPrompt,
	domain.OpRemoveBackground: removeBackgroundPrompt,
	domain.OpSceneComposite:   scenePrompt,
	domain.OpUpscale:          upscalePrompt,
	domain.OpCompose:          composePrompt,
}

func buildPrompt(req domain.Request) (string, error) {
	builder, ok := promptBuilders[req.Operation()]
	if !ok {
		return "", fmt.Errorf("gemini: no prompt builder for operation %q", req.Operation())
	}
	return builder(req), nil
}

func textToImagePrompt(req domain.Request) string {
	return req.Instruction()
}

func localizedEditPrompt(req domain.Request) string {
	h, _ := req.Hotspot()
	var b strings.Builder
	b.WriteString(roleLine)
	b.WriteString(" Your task is to perform a natural, localized edit on the provided image based on the user's request.\n")
	fmt.Fprintf(&b, "User Request: %q\n", req.Instruction())
	fmt.Fprintf(&b, "Edit Location: Focus on the area around pixel coordinates (x: %d, y: %d).\n\n", h.X, h.Y)
	b.WriteString("Editing Guidelines:\n")
	b.WriteString("- The edit must be realistic and blend seamlessly with the surrounding area.\n")
	b.WriteString("- The rest of the image (outside the immediate edit area) must remain identical to the original.\n\n")
	b.WriteString(raceChangePolicy)
	b.WriteString("\n\nOutput: Return ONLY the final edited image. Do not return text.")
	return b.String()
}

func stylizePrompt(req domain.Request) string {
	var b strings.Builder
	b.WriteString(roleLine)
	b.WriteString(" Your task is to apply a stylistic filter or a global adjustment to the entire image based on the user's request. Do not change the composition or content, only apply the style.\n")
	fmt.Fprintf(&b, "Request: %q\n\n", req.Instruction())
	b.WriteString(filterPolicy)
	b.WriteString("\n\nOutput: Return ONLY the final filtered image. Do not return text.")
	return b.String()
}

func expandPrompt(req domain.Request) string {
	var b strings.Builder
	b.WriteString(roleLine)
	b.WriteString(" You are performing an 'outpainting' or 'generative expand' task.\n")
	b.WriteString("The user has provided an image that has been placed on a larger, transparent canvas.\n")
	b.WriteString("Your task is to fill in the transparent areas ONLY.\n")
	b.WriteString("The original, non-transparent part of the image MUST be preserved pixel for pixel and remain completely unchanged.\n")
	fmt.Fprintf(&b, "Fill the transparent space based on this user request: %q\n", req.Instruction())
	b.WriteString("The new content must blend seamlessly with the original image's edges, matching the style, lighting, and perspective.\n\n")
	b.WriteString("Output: Return ONLY the final, filled-in image. Do not include any text.")
	return b.String()
}

func removeBackgroundPrompt(domain.Request) string {
	return roleLine + " Your task is to remove the background from this image, leaving only the main subject. " +
		"The final output MUST have a transparent background.\nOutput ONLY the resulting image. Do not return text."
}

func scenePrompt(req domain.Request) string {
	var b strings.Builder
	b.WriteString(roleLine)
	b.WriteString(" Your task is to realistically composite the main subject from the provided image into a completely new scene, as described by the user.\n")
	b.WriteString("The original subject must be seamlessly integrated into the new background, matching lighting and perspective.\n")
	fmt.Fprintf(&b, "User's Scene Request: %q\n", req.Instruction())
	b.WriteString("Output ONLY the final composited image. Do not return text.")
	return b.String()
}

func upscalePrompt(req domain.Request) string {
	src, dst := req.SourceSize(), req.TargetSize()
	var b strings.Builder
	b.WriteString("You are an expert photo restoration and super-resolution AI.\n")
	b.WriteString("Your task is to take the provided image and upscale it to double its original resolution, enhancing details and clarity without altering the content or composition.\n\n")
	fmt.Fprintf(&b, "The original image is %dx%d pixels.\n", src.Width, src.Height)
	fmt.Fprintf(&b, "Your output MUST be a new, high-resolution image that is exactly %dx%d pixels.\n\n", dst.Width, dst.Height)
	b.WriteString("Instructions:\n")
	b.WriteString("1. Perform Super-Resolution: add detail and sharpness as if the photo had been captured with a higher-resolution camera.\n")
	b.WriteString("2. Strictly Preserve Content: composition, subjects, colors and every creative aspect must be maintained. DO NOT add, remove, or change any objects or elements.\n")
	b.WriteString("3. Output Image Only: return ONLY the upscaled image. Do not output any text or explanations.")
	return b.String()
}

// composePrompt sends the user's instruction untouched.
func composePrompt(req domain.Request) string {
	return req.Instruction()
}
