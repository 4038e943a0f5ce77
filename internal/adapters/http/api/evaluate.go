package api

import (
	"context"
	"net/http"

	"github.com/okian/merit/internal/domain/model"
)

// EvaluateDependencies defines the interface for synchronous evaluation.
type EvaluateDependencies interface {
	Evaluate(ctx context.Context, app model.Application) (model.Evaluation, error)
}

// EvaluateHandler handles evaluation requests.
type EvaluateHandler struct {
	deps EvaluateDependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps EvaluateDependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

// HandleEvaluate handles POST /evaluate requests. The application is scored
// and ranked before the response is written.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluate"
	app, err := decodeApplication(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	ev, err := h.deps.Evaluate(r.Context(), app)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
