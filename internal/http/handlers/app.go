package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pixshop/internal/collage"
	"pixshop/internal/domain"
	"pixshop/internal/imaging"
	"pixshop/internal/infra"
	"pixshop/internal/presets"
)

// Runner executes one image request, normally the fallback orchestrator.
type Runner interface {
	Run(ctx context.Context, req domain.Request) domain.Result
}

// CollageRunner fans one image out to many styles.
type CollageRunner interface {
	Run(ctx context.Context, src imaging.Resource, styles []collage.Style) (collage.Outcome, error)
}

type App struct {
	Images   Runner
	Collages CollageRunner
	Presets  *presets.Catalog
	Logger   *infra.Logger
	Now      func() time.Time
}

func NewApp(images Runner, collageRunner CollageRunner, catalog *presets.Catalog, logger *infra.Logger) *App {
	if catalog == nil {
		catalog = presets.Default()
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{
		Images:   images,
		Collages: collageRunner,
		Presets:  catalog,
		Logger:   logger,
		Now:      time.Now,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, codeStr, msg string) {
	a.json(w, code, errorResponse{Error: errorBody{Code: codeStr, Message: msg}})
}

// decode reads a JSON body. It writes the error response itself and reports
// whether the handler may continue.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body is too large")
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// failure maps an operation error onto an HTTP status. Validation problems are
// the caller's fault; provider failures are reported as a bad gateway.
func (a *App) failure(w http.ResponseWriter, op domain.Operation, err error) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	kind := domain.KindOf(err)
	body := errorBody{Message: op.UserMessage(err), Kind: kind.String()}
	code := http.StatusBadGateway
	switch kind {
	case domain.DecodeFailure:
		body.Code = "bad_image"
		code = http.StatusBadRequest
	case 0:
		body.Code = "internal"
		body.Kind = ""
		code = http.StatusInternalServerError
	default:
		body.Code = "generation_failed"
	}
	a.json(w, code, errorResponse{Error: body})
}
