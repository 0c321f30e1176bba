package handlers

import (
	"net/http"

	"pixshop/internal/domain"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"operations": domain.Operations(),
	})
}
