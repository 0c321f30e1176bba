package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"pixshop/internal/domain"
	"pixshop/internal/imaging"
	"pixshop/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("gemini: api key is required")

const (
	DefaultImageModel  = "gemini-2.5-flash-image-preview"
	DefaultImagenModel = "imagen-4.0-generate-001"
)

// Options configures the Gemini client.
type Options struct {
	APIKey         string
	BaseURL        string
	APIVersion     string
	ImageModel     string
	ImagenModel    string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// modelService is the subset of *genai.Models the client calls.
type modelService interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client turns domain requests into Gemini and Imagen calls.
type Client struct {
	models      modelService
	imageModel  string
	imagenModel string
	timeout     time.Duration
	logger      *infra.Logger
	now         func() time.Time
}

// NewClient builds a client backed by the Gemini Developer API.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions.BaseURL = strings.TrimRight(base, "/") + "/"
	}
	if v := strings.TrimSpace(opts.APIVersion); v != "" {
		cfg.HTTPOptions.APIVersion = v
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newClient(sdk.Models, opts), nil
}

func newClient(models modelService, opts Options) *Client {
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	imagenModel := strings.TrimSpace(opts.ImagenModel)
	if imagenModel == "" {
		imagenModel = DefaultImagenModel
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		models:      models,
		imageModel:  imageModel,
		imagenModel: imagenModel,
		timeout:     opts.RequestTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Name identifies the provider in results and logs.
func (c *Client) Name() string { return ProviderName }

// Model returns the image editing model identifier.
func (c *Client) Model() string { return c.imageModel }

// Execute runs req against Gemini, or Imagen for text-to-image. It never
// panics on provider output; every outcome is a Result.
func (c *Client) Execute(ctx context.Context, req domain.Request) domain.Result {
	if req.IsZero() {
		return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, "empty request", domain.ErrInvalidRequest))
	}
	prompt, err := buildPrompt(req)
	if err != nil {
		return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, err.Error(), err))
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	name := req.Operation().OutputName(c.now())
	if req.Operation() == domain.OpTextToImage {
		return c.generateImage(ctx, prompt, name)
	}
	return c.generateContent(ctx, req, prompt, name)
}

func (c *Client) generateContent(ctx context.Context, req domain.Request, prompt, name string) domain.Result {
	contents, err := buildContents(req, prompt)
	if err != nil {
		return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, err.Error(), err))
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
	}
	c.logger.Debug().
		Str("model", c.imageModel).
		Str("operation", req.Operation().String()).
		Int("images", len(req.Images())).
		Msg("gemini: sending generate content request")

	resp, err := c.models.GenerateContent(ctx, c.imageModel, contents, config)
	if err != nil {
		return domain.Failed(transportFailure(err))
	}
	result := Interpret(resp, req.Operation(), name)
	c.logResult(req.Operation(), result)
	return result
}

func (c *Client) generateImage(ctx context.Context, prompt, name string) domain.Result {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	}
	c.logger.Debug().
		Str("model", c.imagenModel).
		Str("operation", domain.OpTextToImage.String()).
		Msg("gemini: sending generate images request")

	resp, err := c.models.GenerateImages(ctx, c.imagenModel, prompt, config)
	if err != nil {
		return domain.Failed(transportFailure(err))
	}
	result := InterpretImages(resp, name)
	c.logResult(domain.OpTextToImage, result)
	return result
}

func (c *Client) logResult(op domain.Operation, result domain.Result) {
	if img, ok := result.Image(); ok {
		c.logger.Debug().
			Str("operation", op.String()).
			Str("mime", img.MIMEType()).
			Int("bytes", img.Len()).
			Msg("gemini: received image")
		return
	}
	f := result.Failure()
	c.logger.Debug().
		Str("operation", op.String()).
		Str("kind", f.Kind.String()).
		Str("message", f.Text()).
		Msg("gemini: response carried no image")
}

// buildContents orders the parts as images first, then the text.
func buildContents(req domain.Request, prompt string) ([]*genai.Content, error) {
	images := req.Images()
	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		payload, err := imaging.Encode(img)
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.NewPartFromBytes(img.Bytes(), payload.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}
