package api

import (
	"bytes"
	"net/http"

	"github.com/okian/merit/internal/domain/rules"
	"github.com/okian/merit/internal/domain/types"
)

// RulesetDependencies defines the interface for ordinance lookups.
type RulesetDependencies interface {
	Rulesets() types.RulesetInfo
	Ruleset(version string) (*rules.Ruleset, error)
}

// RulesetHandler handles ruleset requests.
type RulesetHandler struct {
	deps RulesetDependencies
}

// NewRulesetHandler creates a new ruleset handler.
func NewRulesetHandler(deps RulesetDependencies) *RulesetHandler {
	return &RulesetHandler{deps: deps}
}

// HandleList handles GET /rulesets requests.
func (h *RulesetHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Rulesets())
}

// HandleGet handles GET /rulesets/{version} requests. The ordinance is
// returned in the same YAML layout the loader reads.
func (h *RulesetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ruleset"
	rs, err := h.deps.Ruleset(r.PathValue("version"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
		return
	}
	var buf bytes.Buffer
	if err := rules.Encode(&buf, rs); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
