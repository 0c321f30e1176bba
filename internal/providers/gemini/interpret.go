package gemini

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"pixshop/internal/domain"
	"pixshop/internal/imaging"
)

// ProviderName tags results and failures produced by this adapter.
const ProviderName = "gemini"

const emptyHint = "This can happen due to safety filters or if the request is too complex. Please try rephrasing your prompt to be more direct."

// Interpret classifies a generateContent response. Checks run in a fixed
// order: block, inline image, abnormal finish, then empty.
func Interpret(resp *genai.GenerateContentResponse, op domain.Operation, name string) domain.Result {
	if resp == nil {
		return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, "The AI model returned no response for the "+op.Context()+".", nil))
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		msg := fmt.Sprintf("Request was blocked. Reason: %s. %s", fb.BlockReason, fb.BlockReasonMessage)
		return domain.Failed(domain.NewFailure(domain.Blocked, ProviderName, msg, nil))
	}

	var first *genai.Candidate
	if len(resp.Candidates) > 0 {
		first = resp.Candidates[0]
	}

	if blob := firstInlineData(first); blob != nil {
		img, err := imaging.New(name, blob.MIMEType, blob.Data)
		if err != nil {
			msg := fmt.Sprintf("The AI model returned an unreadable image for the %s.", op.Context())
			return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, msg, err))
		}
		return domain.Succeeded(img, domain.SourcePrimary, ProviderName)
	}

	if first != nil && first.FinishReason != "" && first.FinishReason != genai.FinishReasonStop {
		msg := fmt.Sprintf("Image generation for %s stopped unexpectedly. Reason: %s. This often relates to safety settings.", op.Context(), first.FinishReason)
		return domain.Failed(domain.NewFailure(domain.AbnormalStop, ProviderName, msg, nil))
	}

	msg := fmt.Sprintf("The AI model did not return an image for the %s. ", op.Context())
	if text := candidateText(first); text != "" {
		msg += fmt.Sprintf("The model responded with text: %q", text)
	} else {
		msg += emptyHint
	}
	return domain.Failed(domain.NewFailure(domain.EmptyResponse, ProviderName, msg, nil))
}

// InterpretImages classifies an Imagen generateImages response.
func InterpretImages(resp *genai.GenerateImagesResponse, name string) domain.Result {
	if resp == nil {
		return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, "The image model returned no response.", nil))
	}
	var filtered []string
	for _, generated := range resp.GeneratedImages {
		if generated == nil {
			continue
		}
		if generated.Image != nil && len(generated.Image.ImageBytes) > 0 {
			mime := generated.Image.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			img, err := imaging.New(name, mime, generated.Image.ImageBytes)
			if err != nil {
				return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, "The image model returned an unreadable image.", err))
			}
			return domain.Succeeded(img, domain.SourcePrimary, ProviderName)
		}
		if reason := strings.TrimSpace(generated.RAIFilteredReason); reason != "" {
			filtered = append(filtered, reason)
		}
	}
	if len(filtered) > 0 {
		msg := "Request was blocked. Reason: " + strings.Join(filtered, "; ")
		return domain.Failed(domain.NewFailure(domain.Blocked, ProviderName, msg, nil))
	}
	return domain.Failed(domain.NewFailure(domain.EmptyResponse, ProviderName,
		"Image generation failed. The model did not return an image. This can happen due to safety filters or an issue with the prompt.", nil))
}

func firstInlineData(c *genai.Candidate) *genai.Blob {
	if c == nil || c.Content == nil {
		return nil
	}
	for _, part := range c.Content.Parts {
		if part != nil && part.InlineData != nil {
			return part.InlineData
		}
	}
	return nil
}

func candidateText(c *genai.Candidate) string {
	if c == nil || c.Content == nil {
		return ""
	}
	var texts []string
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if t := strings.TrimSpace(part.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}

// transportFailure maps an SDK call error.
func transportFailure(err error) *domain.Failure {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return domain.NewFailure(domain.TransportError, ProviderName, fmt.Sprintf("%s (%d %s)", apiErr.Message, apiErr.Code, apiErr.Status), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Message != "" {
		return domain.NewFailure(domain.TransportError, ProviderName, fmt.Sprintf("%s (%d %s)", apiErrPtr.Message, apiErrPtr.Code, apiErrPtr.Status), err)
	}
	return domain.NewFailure(domain.TransportError, ProviderName, err.Error(), err)
}
