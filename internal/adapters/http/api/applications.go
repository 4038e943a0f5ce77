package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/internal/domain/scoring"
	"github.com/okian/merit/internal/domain/types"
)

const (
	maxIDLength = 128
	maxRecords  = 500 // across all record lists of one application
)

// ApplicationDependencies defines the interface for asynchronous submission.
type ApplicationDependencies interface {
	Submit(ctx context.Context, app model.Application) (types.Submission, error)
	Result(ctx context.Context, id string) (types.Result, error)
}

// ApplicationHandler handles application requests.
type ApplicationHandler struct {
	deps ApplicationDependencies
}

// NewApplicationHandler creates a new application handler.
func NewApplicationHandler(deps ApplicationDependencies) *ApplicationHandler {
	return &ApplicationHandler{deps: deps}
}

// HandleSubmit handles POST /applications requests.
func (h *ApplicationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_application"
	app, err := decodeApplication(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sub, err := h.deps.Submit(r.Context(), app)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ApplicationID: sub.ApplicationID, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ApplicationID: sub.ApplicationID})
}

// HandleGet handles GET /applications/{id} requests.
func (h *ApplicationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_application"
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.Result(r.Context(), id)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func validateApplication(app *model.Application) error {
	app.ID = strings.TrimSpace(app.ID)
	app.RulesetVersion = strings.TrimSpace(app.RulesetVersion)

	switch {
	case strings.TrimSpace(app.Applicant) == "":
		return errors.New("missing applicant")
	case len(app.ID) > maxIDLength:
		return fmt.Errorf("id longer than %d bytes", maxIDLength)
	case app.AcademicBase < 0 || app.AcademicBase > scoring.BaseCeiling:
		return fmt.Errorf("academic_base must be within [0, %g]", scoring.BaseCeiling)
	}

	a, p := &app.Academic, &app.Performance
	n := len(a.Publications) + len(a.Patents) + len(a.Competitions) + len(a.Innovation) +
		len(p.Volunteer.Segments) + len(p.Volunteer.Awards) + len(p.Honors) + len(p.SocialWork) + len(p.Sports)
	if n > maxRecords {
		return fmt.Errorf("%d records exceed the limit of %d", n, maxRecords)
	}
	return nil
}
