package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pixshop/internal/collage"
	"pixshop/internal/domain"
	"pixshop/internal/imaging"
	"pixshop/internal/middleware"
	"pixshop/internal/presets"
)

type imageRequest struct {
	Prompt  string          `json:"prompt"`
	Preset  string          `json:"preset"`
	Images  []string        `json:"images"`
	Hotspot *domain.Hotspot `json:"hotspot"`
}

type imageResponse struct {
	Image    string        `json:"image"`
	Name     string        `json:"name"`
	MIME     string        `json:"mime"`
	Source   domain.Source `json:"source"`
	Provider string        `json:"provider"`
}

type collageRequest struct {
	Image  string   `json:"image"`
	Styles []string `json:"styles"`
}

type collageItem struct {
	Style string `json:"style"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// RunOperation handles POST /v1/images/{operation}.
func (a *App) RunOperation(w http.ResponseWriter, r *http.Request) {
	op, err := domain.ParseOperation(chi.URLParam(r, "operation"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown operation")
		return
	}
	var body imageRequest
	if !a.decode(w, r, &body) {
		return
	}

	prompt, err := a.resolvePrompt(op, body.Prompt, body.Preset)
	if err != nil {
		a.failure(w, op, err)
		return
	}
	images, err := parseImages(body.Images)
	if err != nil {
		a.failure(w, op, err)
		return
	}
	req, err := domain.Build(op, domain.Input{Prompt: prompt, Images: images, Hotspot: body.Hotspot})
	if err != nil {
		a.failure(w, op, err)
		return
	}

	result := a.Images.Run(r.Context(), req)
	img, ok := result.Image()
	if !ok {
		a.Logger.Warn().
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("operation", op.String()).
			Str("kind", result.Failure().Kind.String()).
			Msg("image operation failed")
		a.failure(w, op, result.Err())
		return
	}

	name := op.OutputName(a.Now())
	a.json(w, http.StatusOK, imageResponse{
		Image:    img.DataURI(),
		Name:     name,
		MIME:     img.MIMEType(),
		Source:   result.Source(),
		Provider: result.Provider(),
	})
}

// Collage handles POST /v1/images/collage. ?format=zip streams an archive.
func (a *App) Collage(w http.ResponseWriter, r *http.Request) {
	var body collageRequest
	if !a.decode(w, r, &body) {
		return
	}
	styles, err := collage.SelectStyles(body.Styles)
	if err != nil {
		a.failure(w, domain.OpStylize, err)
		return
	}
	src, err := imaging.ParseDataURI(body.Image, "collage-source")
	if err != nil {
		a.failure(w, domain.OpStylize, fmt.Errorf("%w: image: %v", domain.ErrInvalidRequest, err))
		return
	}

	outcome, err := a.Collages.Run(r.Context(), src, styles)
	if err != nil {
		a.failure(w, domain.OpStylize, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "zip") {
		now := a.Now()
		archive, err := outcome.Archive(now)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=collage-%d.zip", now.UnixMilli()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(archive)
		return
	}

	items := make([]collageItem, 0, len(outcome.Entries))
	for _, e := range outcome.Entries {
		items = append(items, collageItem{Style: e.Style, Name: e.Image.Name(), Image: e.Image.DataURI()})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// ListPresets handles GET /v1/presets with optional operation and category
// filters.
func (a *App) ListPresets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var op domain.Operation
	if raw := q.Get("operation"); raw != "" {
		parsed, err := domain.ParseOperation(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		op = parsed
	}
	category := presets.Category(strings.ToLower(q.Get("category")))

	items := make([]presets.Preset, 0)
	for _, p := range a.Presets.All() {
		if op != "" && p.Operation != op {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		items = append(items, p)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) resolvePrompt(op domain.Operation, prompt, preset string) (string, error) {
	preset = strings.TrimSpace(preset)
	if preset == "" {
		return prompt, nil
	}
	if strings.TrimSpace(prompt) != "" {
		return "", fmt.Errorf("%w: send either prompt or preset, not both", domain.ErrInvalidRequest)
	}
	return a.Presets.Resolve(op, preset)
}

func parseImages(uris []string) ([]imaging.Resource, error) {
	out := make([]imaging.Resource, 0, len(uris))
	for i, uri := range uris {
		img, err := imaging.ParseDataURI(uri, fmt.Sprintf("image-%d", i+1))
		if err != nil {
			return nil, fmt.Errorf("%w: images[%d]: %v", domain.ErrInvalidRequest, i, err)
		}
		out = append(out, img)
	}
	return out, nil
}
