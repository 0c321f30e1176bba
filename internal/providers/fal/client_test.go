package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixshop/internal/domain"
	"pixshop/internal/imaging"
)

func pngResource(t *testing.T, w, h int) imaging.Resource {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	r, err := imaging.New("in.png", "image/png", buf.Bytes())
	require.NoError(t, err)
	return r
}

type capturedRequest struct {
	path string
	auth string
	body generationRequest
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			raw, _ := io.ReadAll(r.Body)
			var body generationRequest
			_ = json.Unmarshal(raw, &body)
			captured = append(captured, capturedRequest{path: r.URL.Path, auth: r.Header.Get("Authorization"), body: body})
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{APIKey: "fal-secret", BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	client.now = func() time.Time { return time.UnixMilli(7) }
	return client, &captured
}

func writeImages(w http.ResponseWriter, urls ...string) {
	images := make([]map[string]string, 0, len(urls))
	for _, u := range urls {
		images = append(images, map[string]string{"url": u})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"images": images})
}

func TestExecuteEditSendsDataURIs(t *testing.T) {
	out := pngResource(t, 6, 6)
	client, captured := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeImages(w, out.DataURI())
	})
	src := pngResource(t, 3, 3)
	req, err := domain.NewExpand(src, "a mountain range")
	require.NoError(t, err)

	result := client.Execute(context.Background(), req)
	require.True(t, result.OK(), "unexpected failure: %v", result.Err())
	img, _ := result.Image()
	assert.True(t, img.Equal(out))
	assert.Equal(t, "expanded-7.png", img.Name())
	assert.Equal(t, domain.SourceSecondary, result.Source())

	require.Len(t, *captured, 1)
	got := (*captured)[0]
	assert.Equal(t, "/"+DefaultEditApp, got.path)
	assert.Equal(t, "Key fal-secret", got.auth)
	assert.Equal(t, []string{src.DataURI()}, got.body.ImageURLs)
	assert.Equal(t, "png", got.body.OutputFormat)
	assert.True(t, got.body.SyncMode)
	assert.Equal(t, 1, got.body.NumImages)
	assert.Contains(t, got.body.Prompt, "Outpaint and fill the transparent areas")
	assert.Contains(t, got.body.Prompt, `"a mountain range"`)
}

func TestExecuteTextToImageOmitsImages(t *testing.T) {
	out := pngResource(t, 2, 2)
	client, captured := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeImages(w, out.DataURI())
	})
	req, err := domain.NewTextToImage("a red fox")
	require.NoError(t, err)

	result := client.Execute(context.Background(), req)
	require.True(t, result.OK())
	require.Len(t, *captured, 1)
	assert.Equal(t, "/"+DefaultTextApp, (*captured)[0].path)
	assert.Empty(t, (*captured)[0].body.ImageURLs)
	assert.Equal(t, "a red fox", (*captured)[0].body.Prompt)
}

func TestExecuteDropsHotspot(t *testing.T) {
	out := pngResource(t, 2, 2)
	client, captured := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeImages(w, out.DataURI())
	})
	req, err := domain.NewLocalizedEdit(pngResource(t, 4, 4), "add a hat", domain.Hotspot{X: 10, Y: 20})
	require.NoError(t, err)

	require.True(t, client.Execute(context.Background(), req).OK())
	assert.Equal(t, "add a hat", (*captured)[0].body.Prompt)
}

func TestExecuteDownloadsHTTPURL(t *testing.T) {
	out := pngResource(t, 2, 2)
	var client *Client
	var base string
	client, _ = newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(out.Bytes())
			return
		}
		writeImages(w, base+"/files/out.png")
	})
	base = client.baseURL
	req, err := domain.NewRemoveBackground(pngResource(t, 2, 2))
	require.NoError(t, err)

	result := client.Execute(context.Background(), req)
	require.True(t, result.OK(), "unexpected failure: %v", result.Err())
	img, _ := result.Image()
	assert.Equal(t, out.Bytes(), img.Bytes())
}

func TestExecuteFailureKinds(t *testing.T) {
	tests := []struct {
		name     string
		handler  func(w http.ResponseWriter, r *http.Request)
		wantKind domain.FailureKind
		wantMsg  string
	}{
		{
			name:     "no images",
			handler:  func(w http.ResponseWriter, r *http.Request) { writeImages(w) },
			wantKind: domain.EmptyResponse,
			wantMsg:  "did not return an image",
		},
		{
			name: "status error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"detail":[{"msg":"image_urls: invalid"}]}`))
			},
			wantKind: domain.TransportError,
			wantMsg:  "status 422: image_urls: invalid",
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Invalid key"}`))
			},
			wantKind: domain.TransportError,
			wantMsg:  "Invalid key",
		},
		{
			name:     "bad json",
			handler:  func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>")) },
			wantKind: domain.Malformed,
		},
		{
			name:     "undecodable data uri",
			handler:  func(w http.ResponseWriter, r *http.Request) { writeImages(w, "data:text/plain;base64,aGVsbG8=") },
			wantKind: domain.Malformed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestServer(t, tc.handler)
			req, err := domain.NewStylize(pngResource(t, 2, 2), "anime")
			require.NoError(t, err)
			f := client.Execute(context.Background(), req).Failure()
			require.NotNil(t, f)
			assert.Equal(t, tc.wantKind, f.Kind)
			assert.Equal(t, ProviderName, f.Provider)
			if tc.wantMsg != "" {
				assert.Contains(t, f.Message, tc.wantMsg)
			}
			assert.False(t, strings.Contains(f.Error(), "fal-secret"))
		})
	}
}

func TestExecuteTransportErrorWhenUnreachable(t *testing.T) {
	client, err := NewClient(Options{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	req, err := domain.NewStylize(pngResource(t, 2, 2), "anime")
	require.NoError(t, err)
	f := client.Execute(context.Background(), req).Failure()
	require.NotNil(t, f)
	assert.Equal(t, domain.TransportError, f.Kind)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Options{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestPromptsPerOperation(t *testing.T) {
	for _, op := range domain.Operations() {
		_, ok := promptBuilders[op]
		assert.True(t, ok, "missing prompt for %s", op)
	}
	up, err := domain.NewUpscale(pngResource(t, 800, 600))
	require.NoError(t, err)
	prompt, err := buildPrompt(up)
	require.NoError(t, err)
	assert.Contains(t, prompt, "1600x1200")

	scene, err := domain.NewSceneComposite(pngResource(t, 2, 2), "on the moon")
	require.NoError(t, err)
	prompt, _ = buildPrompt(scene)
	assert.Contains(t, prompt, `completely new scene, as described here: "on the moon"`)
}
