package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pixshop/internal/domain"
	"pixshop/internal/imaging"
	"pixshop/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("fal: api key is required")

// ProviderName tags results and failures produced by this adapter.
const ProviderName = "fal"

const (
	DefaultBaseURL = "https://fal.run"
	DefaultEditApp = "fal-ai/nano-banana/edit"
	DefaultTextApp = "fal-ai/nano-banana"
)

// Options configures the fal.ai client.
type Options struct {
	APIKey         string
	BaseURL        string
	EditApp        string
	TextApp        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls the fal.ai nano-banana apps in synchronous mode.
type Client struct {
	apiKey     string
	baseURL    string
	editApp    string
	textApp    string
	httpClient *http.Client
	logger     *infra.Logger
	now        func() time.Time
}

type generationRequest struct {
	Prompt       string   `json:"prompt"`
	ImageURLs    []string `json:"image_urls,omitempty"`
	OutputFormat string   `json:"output_format"`
	SyncMode     bool     `json:"sync_mode"`
	NumImages    int      `json:"num_images"`
}

type generationResponse struct {
	Images []struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
	} `json:"images"`
	Description string `json:"description"`
}

type errorResponse struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	editApp := strings.Trim(strings.TrimSpace(opts.EditApp), "/")
	if editApp == "" {
		editApp = DefaultEditApp
	}
	textApp := strings.Trim(strings.TrimSpace(opts.TextApp), "/")
	if textApp == "" {
		textApp = DefaultTextApp
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		editApp:    editApp,
		textApp:    textApp,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Name identifies the provider in results and logs.
func (c *Client) Name() string { return ProviderName }

// Execute sends req to the edit app, or the text app for text-to-image.
func (c *Client) Execute(ctx context.Context, req domain.Request) domain.Result {
	if req.IsZero() {
		return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, "empty request", domain.ErrInvalidRequest))
	}
	prompt, err := buildPrompt(req)
	if err != nil {
		return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, err.Error(), err))
	}
	payload := generationRequest{
		Prompt:       prompt,
		OutputFormat: "png",
		SyncMode:     true,
		NumImages:    1,
	}
	app := c.textApp
	if req.Operation() != domain.OpTextToImage {
		app = c.editApp
		for _, img := range req.Images() {
			if _, err := imaging.Encode(img); err != nil {
				return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, err.Error(), err))
			}
			payload.ImageURLs = append(payload.ImageURLs, img.DataURI())
		}
	}

	c.logger.Debug().
		Str("app", app).
		Str("operation", req.Operation().String()).
		Int("images", len(payload.ImageURLs)).
		Msg("fal: sending request")

	decoded, failure := c.call(ctx, app, payload)
	if failure != nil {
		return domain.Failed(failure)
	}
	if len(decoded.Images) == 0 || strings.TrimSpace(decoded.Images[0].URL) == "" {
		msg := "Fal AI fallback did not return an image."
		if d := strings.TrimSpace(decoded.Description); d != "" {
			msg += " " + d
		}
		return domain.Failed(domain.NewFailure(domain.EmptyResponse, ProviderName, msg, nil))
	}

	name := req.Operation().OutputName(c.now())
	img, err := c.resolveImage(ctx, decoded.Images[0].URL, decoded.Images[0].ContentType, name)
	if err != nil {
		var f *domain.Failure
		if errors.As(err, &f) {
			return domain.Failed(f)
		}
		return domain.Failed(domain.NewFailure(domain.Malformed, ProviderName, "Fal AI returned an unreadable image.", err))
	}
	c.logger.Debug().
		Str("app", app).
		Str("operation", req.Operation().String()).
		Str("mime", img.MIMEType()).
		Msg("fal: received image")
	return domain.Succeeded(img, domain.SourceSecondary, ProviderName)
}

func (c *Client) call(ctx context.Context, app string, payload generationRequest) (*generationResponse, *domain.Failure) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewFailure(domain.Malformed, ProviderName, "fal: encode request", err)
	}
	endpoint := c.baseURL + "/" + app
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewFailure(domain.TransportError, ProviderName, "fal: build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewFailure(domain.TransportError, ProviderName, fmt.Sprintf("fal: http request: %v", err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFailure(domain.TransportError, ProviderName, fmt.Sprintf("fal: read response: %v", err), err)
	}
	if resp.StatusCode >= 300 {
		return nil, domain.NewFailure(domain.TransportError, ProviderName, statusMessage(resp.StatusCode, raw), nil)
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, domain.NewFailure(domain.Malformed, ProviderName, fmt.Sprintf("fal: decode response: %v", err), err)
	}
	return &decoded, nil
}

// resolveImage decodes a sync-mode data URI, or downloads an http(s) URL.
func (c *Client) resolveImage(ctx context.Context, imageURL, contentType, name string) (imaging.Resource, error) {
	imageURL = strings.TrimSpace(imageURL)
	if strings.HasPrefix(imageURL, "data:") {
		return imaging.ParseDataURI(imageURL, name)
	}
	parsed, err := url.Parse(imageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return imaging.Resource{}, fmt.Errorf("fal: invalid image url: %s", imageURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return imaging.Resource{}, fmt.Errorf("fal: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return imaging.Resource{}, domain.NewFailure(domain.TransportError, ProviderName, fmt.Sprintf("fal: download image: %v", err), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return imaging.Resource{}, domain.NewFailure(domain.TransportError, ProviderName, fmt.Sprintf("fal: download status %d", resp.StatusCode), nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return imaging.Resource{}, domain.NewFailure(domain.TransportError, ProviderName, fmt.Sprintf("fal: read image: %v", err), err)
	}
	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(mime), "image/") {
		mime = contentType
	}
	return imaging.New(name, mime, data)
}

func statusMessage(status int, raw []byte) string {
	var detail errorResponse
	if err := json.Unmarshal(raw, &detail); err == nil {
		for _, msg := range []string{detail.Message, detail.Error, detailText(detail.Detail)} {
			if msg = strings.TrimSpace(msg); msg != "" {
				return fmt.Sprintf("fal: status %d: %s", status, msg)
			}
		}
	}
	return fmt.Sprintf("fal: status %d: %s", status, strings.TrimSpace(string(raw)))
}

// detailText flattens the "detail" field, which is either a string or a list
// of validation errors.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
