package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Operation enumerates the supported image transformations.
type Operation string

const (
	OpTextToImage      Operation = "text-to-image"
	OpLocalizedEdit    Operation = "localized-edit"
	OpStylize          Operation = "stylize"
	OpExpand           Operation = "expand"
	OpRemoveBackground Operation = "remove-background"
	OpSceneComposite   Operation = "scene-composite"
	OpUpscale          Operation = "upscale"
	OpCompose          Operation = "two-image-compose"
)

type operationSpec struct {
	images int
	// context names the operation inside provider diagnostics.
	context string
	// action completes the sentence "Failed to ...".
	action string
	// task names the operation when both providers failed without a message.
	task       string
	namePrefix string
}

var operations = map[Operation]operationSpec{
	OpTextToImage:      {images: 0, context: "image generation", action: "generate the image", task: "image generation", namePrefix: "generated"},
	OpLocalizedEdit:    {images: 1, context: "edit", action: "generate the image", task: "edit operation", namePrefix: "edited"},
	OpStylize:          {images: 1, context: "stylize", action: "apply the style", task: "stylize operation", namePrefix: "stylized"},
	OpExpand:           {images: 1, context: "expand", action: "expand the image", task: "expand operation", namePrefix: "expanded"},
	OpRemoveBackground: {images: 1, context: "remove-bg", action: "remove background", task: "background removal", namePrefix: "removed-bg"},
	OpSceneComposite:   {images: 1, context: "scene", action: "apply the scene", task: "scene generation", namePrefix: "scene"},
	OpUpscale:          {images: 1, context: "upscale", action: "upscale the image", task: "upscale operation", namePrefix: "upscaled"},
	OpCompose:          {images: 2, context: "compose", action: "compose images", task: "compose operation", namePrefix: "composed"},
}

// ParseOperation resolves a wire name into an Operation. "compose" is accepted
// as a short alias for two-image-compose.
func ParseOperation(name string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(name)))
	if op == "compose" {
		op = OpCompose
	}
	if _, ok := operations[op]; !ok {
		return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, name)
	}
	return op, nil
}

// Operations lists every supported operation in a stable order.
func Operations() []Operation {
	out := make([]Operation, 0, len(operations))
	for op := range operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (o Operation) String() string { return string(o) }

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	_, ok := operations[o]
	return ok
}

// ImageCount is the exact number of input images the operation takes.
func (o Operation) ImageCount() int { return operations[o].images }

// Context is the short label used in provider diagnostics, e.g. "remove-bg".
func (o Operation) Context() string { return operations[o].context }

// Action is the user-facing verb phrase, e.g. "upscale the image".
func (o Operation) Action() string { return operations[o].action }

// Task names the operation in the last-resort exhausted message.
func (o Operation) Task() string { return operations[o].task }

// OutputName suggests a file name for a result produced at t.
func (o Operation) OutputName(t time.Time) string {
	prefix := operations[o].namePrefix
	if prefix == "" {
		prefix = "image"
	}
	return fmt.Sprintf("%s-%d.png", prefix, t.UnixMilli())
}

// UserMessage renders the message shown to an end user for a failed operation.
func (o Operation) UserMessage(err error) string {
	action := o.Action()
	if action == "" {
		action = "process the image"
	}
	msg := "An unknown error occurred."
	if err != nil {
		if m := strings.TrimSpace(MessageOf(err)); m != "" {
			msg = m
		}
	}
	return fmt.Sprintf("Failed to %s. %s", action, msg)
}
