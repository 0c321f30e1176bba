package gemini

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"pixshop/internal/domain"
)

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func imageResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "here you go"},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
			}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestInterpretReturnsInlineImage(t *testing.T) {
	data := pngData(t, 3, 3)
	result := Interpret(imageResponse(data), domain.OpStylize, "stylized-1.png")
	require.True(t, result.OK(), "unexpected failure: %v", result.Err())
	img, _ := result.Image()
	assert.Equal(t, data, img.Bytes())
	assert.Equal(t, "image/png", img.MIMEType())
	assert.Equal(t, "stylized-1.png", img.Name())
	assert.Equal(t, domain.SourcePrimary, result.Source())
	assert.Equal(t, ProviderName, result.Provider())
}

func TestInterpretBlockWinsOverInlineImage(t *testing.T) {
	for _, op := range domain.Operations() {
		t.Run(op.String(), func(t *testing.T) {
			resp := imageResponse([]byte("garbage"))
			resp.PromptFeedback = &genai.GenerateContentResponsePromptFeedback{
				BlockReason:        genai.BlockedReasonSafety,
				BlockReasonMessage: "unsafe content",
			}
			result := Interpret(resp, op, "x.png")
			require.False(t, result.OK())
			f := result.Failure()
			assert.Equal(t, domain.Blocked, f.Kind)
			assert.Contains(t, f.Message, "SAFETY")
			assert.Contains(t, f.Message, "unsafe content")
		})
	}
}

func TestInterpretAbnormalStopBeforeEmpty(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: "I can't do that"}}},
			FinishReason: genai.FinishReasonProhibitedContent,
		}},
	}
	result := Interpret(resp, domain.OpLocalizedEdit, "x.png")
	f := result.Failure()
	require.NotNil(t, f)
	assert.Equal(t, domain.AbnormalStop, f.Kind)
	assert.Equal(t, "Image generation for edit stopped unexpectedly. Reason: PROHIBITED_CONTENT. This often relates to safety settings.", f.Message)
}

func TestInterpretEmptyResponse(t *testing.T) {
	withText := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: " Please upload a clearer photo. "}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
	f := Interpret(withText, domain.OpUpscale, "x.png").Failure()
	require.NotNil(t, f)
	assert.Equal(t, domain.EmptyResponse, f.Kind)
	assert.Equal(t, `The AI model did not return an image for the upscale. The model responded with text: "Please upload a clearer photo."`, f.Message)

	f = Interpret(&genai.GenerateContentResponse{}, domain.OpRemoveBackground, "x.png").Failure()
	require.NotNil(t, f)
	assert.Equal(t, domain.EmptyResponse, f.Kind)
	assert.Contains(t, f.Message, "remove-bg")
	assert.Contains(t, f.Message, "safety filters")
}

func TestInterpretMalformed(t *testing.T) {
	f := Interpret(nil, domain.OpStylize, "x.png").Failure()
	require.NotNil(t, f)
	assert.Equal(t, domain.Malformed, f.Kind)

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "application/json", Data: []byte("{}")}}}},
		}},
	}
	f = Interpret(resp, domain.OpStylize, "x.png").Failure()
	require.NotNil(t, f)
	assert.Equal(t, domain.Malformed, f.Kind)
}

func TestInterpretImages(t *testing.T) {
	data := pngData(t, 2, 2)
	ok := InterpretImages(&genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: data}}},
	}, "generated-1.png")
	require.True(t, ok.OK())
	img, _ := ok.Image()
	assert.Equal(t, "image/png", img.MIMEType())

	blocked := InterpretImages(&genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{RAIFilteredReason: "Unsafe prompt"}},
	}, "x.png")
	assert.Equal(t, domain.Blocked, blocked.Failure().Kind)

	empty := InterpretImages(&genai.GenerateImagesResponse{}, "x.png")
	assert.Equal(t, domain.EmptyResponse, empty.Failure().Kind)

	assert.Equal(t, domain.Malformed, InterpretImages(nil, "x.png").Failure().Kind)
}
