package fal

import (
	"fmt"

	"pixshop/internal/domain"
)

// fal has no system prompt and no hotspot, so each operation is restated as a
// single flat instruction.
type promptBuilder func(req domain.Request) string

var promptBuilders = map[domain.Operation]promptBuilder{
	domain.OpTextToImage:      userText,
	domain.OpLocalizedEdit:    userText,
	domain.OpStylize:          userText,
	domain.OpCompose:          userText,
	domain.OpExpand:           expandPrompt,
	domain.OpRemoveBackground: removeBackgroundPrompt,
	domain.OpSceneComposite:   scenePrompt,
	domain.OpUpscale:          upscalePrompt,
}

func buildPrompt(req domain.Request) (string, error) {
	builder, ok := promptBuilders[req.Operation()]
	if !ok {
		return "", fmt.Errorf("fal: no prompt builder for operation %q", req.Operation())
	}
	return builder(req), nil
}

func userText(req domain.Request) string {
	return req.Instruction()
}

func expandPrompt(req domain.Request) string {
	return fmt.Sprintf("Outpaint and fill the transparent areas of the image based on this description: %q. The original image content must be preserved.", req.Instruction())
}

func removeBackgroundPrompt(domain.Request) string {
	return "Remove the background from this image, leaving only the main subject. The final output MUST have a transparent background."
}

func scenePrompt(req domain.Request) string {
	return fmt.Sprintf("Realistically composite the main subject from the provided image into a completely new scene, as described here: %q", req.Instruction())
}

func upscalePrompt(req domain.Request) string {
	target := req.TargetSize()
	return fmt.Sprintf("Upscale this image to double its resolution (%dx%d pixels), enhancing details and clarity without altering the content.", target.Width, target.Height)
}
