package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/merit/internal/adapters/http/api"
	service "github.com/okian/merit/internal/app"
	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/internal/domain/rules"
	"github.com/okian/merit/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies implements api.Dependencies in memory.
type mockDependencies struct {
	mu        sync.Mutex
	seen      map[string]bool
	results   map[string]types.Result
	ranking   []types.Entry
	submitErr error
	evaluated []model.Application
	lastPage  [2]int
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{seen: map[string]bool{}, results: map[string]types.Result{}}
}

func (m *mockDependencies) Evaluate(_ context.Context, app model.Application) (model.Evaluation, error) { //nolint:gocritic // test double
	m.mu.Lock()
	defer m.mu.Unlock()
	if app.RulesetVersion == "1999" {
		return model.Evaluation{}, fmt.Errorf("%w: %q", rules.ErrUnknownRuleset, app.RulesetVersion)
	}
	m.evaluated = append(m.evaluated, app)
	return model.Evaluation{ApplicationID: app.ID, Applicant: app.Applicant, AcademicBase: app.AcademicBase, Composite: app.AcademicBase + 1}, nil
}

func (m *mockDependencies) Submit(_ context.Context, app model.Application) (types.Submission, error) { //nolint:gocritic // test double
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitErr != nil {
		return types.Submission{}, m.submitErr
	}
	if m.seen[app.ID] {
		return types.Submission{ApplicationID: app.ID, Duplicate: true}, nil
	}
	m.seen[app.ID] = true
	m.results[app.ID] = types.Result{ApplicationID: app.ID, Status: types.StatusPending}
	return types.Submission{ApplicationID: app.ID}, nil
}

func (m *mockDependencies) Result(_ context.Context, id string) (types.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[id]
	if !ok {
		return types.Result{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return r, nil
}

func (m *mockDependencies) TopN(ctx context.Context, n int) ([]api.Entry, error) {
	return m.Page(ctx, 0, n)
}

func (m *mockDependencies) Page(_ context.Context, offset, limit int) ([]api.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPage = [2]int{offset, limit}
	if offset >= len(m.ranking) {
		return []api.Entry{}, nil
	}
	return m.ranking[offset:min(offset+limit, len(m.ranking))], nil
}

func (m *mockDependencies) Rank(_ context.Context, id string) (api.Entry, error) {
	for _, e := range m.ranking {
		if e.ApplicationID == id {
			return e, nil
		}
	}
	return api.Entry{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
}

func (m *mockDependencies) Rulesets() types.RulesetInfo {
	return types.RulesetInfo{Default: rules.DefaultVersion, Versions: []string{rules.DefaultVersion}}
}

func (m *mockDependencies) Ruleset(version string) (*rules.Ruleset, error) {
	if version != rules.DefaultVersion {
		return nil, fmt.Errorf("%w: %q", rules.ErrUnknownRuleset, version)
	}
	return rules.Default(), nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

func newTestServer(deps *mockDependencies) http.Handler {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, 10)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return server.Handler(mux)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

const validApplication = `{
  "id": "app-1",
  "applicant": "s-001",
  "academic_base": 72.5,
  "academic": {
    "publications": [{"title": "p", "category": "A", "author_rank": 1, "total_authors": 1}]
  },
  "performance": {"internship": {"duration": "year"}}
}`

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDependencies()
		h := newTestServer(deps)

		Convey("Then the health endpoint serves metrics", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "merit_admission_")
		})

		Convey("And the stats endpoint serves JSON", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("And every response carries a request id", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Header().Get(api.RequestIDHeader), ShouldHaveLength, 36)

			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			req.Header.Set(api.RequestIDHeader, "trace-42")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "trace-42")
		})

		Convey("And unknown paths are not found", func() {
			w := do(h, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And wrong methods are rejected", func() {
			w := do(h, http.MethodGet, "/evaluate", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestEvaluateHandler(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDependencies()
		h := newTestServer(deps)

		Convey("When a valid application is posted to /evaluate", func() {
			w := do(h, http.MethodPost, "/evaluate", validApplication)

			Convey("Then the evaluation is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var ev model.Evaluation
				So(json.Unmarshal(w.Body.Bytes(), &ev), ShouldBeNil)
				So(ev.ApplicationID, ShouldEqual, "app-1")
				So(ev.Composite, ShouldEqual, 73.5)
				So(deps.evaluated[0].Academic.Publications[0].Category, ShouldEqual, model.CategoryA)
				So(deps.evaluated[0].Performance.Internship.Duration, ShouldEqual, model.InternshipYear)
			})
		})

		Convey("When the body is malformed", func() {
			cases := []struct{ name, body string }{
				{"invalid json", `{"applicant":`},
				{"an unknown field", `{"applicant":"s-1","academic_bse":70}`},
				{"no applicant", `{"id":"a1","academic_base":70}`},
				{"a negative base", `{"applicant":"s-1","academic_base":-1}`},
				{"a base above 80", `{"applicant":"s-1","academic_base":80.5}`},
				{"an id that is too long", fmt.Sprintf(`{"id":%q,"applicant":"s-1"}`, strings.Repeat("x", 129))},
			}
			for _, tc := range cases {
				Convey("And it has "+tc.name, func() {
					w := do(h, http.MethodPost, "/evaluate", tc.body)
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(decodeError(w)["code"], ShouldEqual, "bad_request")
					So(deps.evaluated, ShouldBeEmpty)
				})
			}
		})

		Convey("When too many records are posted", func() {
			pubs := strings.TrimSuffix(strings.Repeat(`{"title":"p","category":"C"},`, 501), ",")
			w := do(h, http.MethodPost, "/evaluate", `{"applicant":"s-1","academic":{"publications":[`+pubs+`]}}`)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldContainSubstring, "exceed the limit")
			})
		})

		Convey("When the ruleset is unknown", func() {
			w := do(h, http.MethodPost, "/evaluate", `{"applicant":"s-1","ruleset_version":"1999"}`)

			Convey("Then it is a client error", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "unknown_ruleset")
			})
		})
	})
}

func TestApplicationHandler(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDependencies()
		h := newTestServer(deps)

		Convey("When an application is submitted", func() {
			w := do(h, http.MethodPost, "/applications", validApplication)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
				So(w.Body.String(), ShouldContainSubstring, `"application_id":"app-1"`)
			})

			Convey("And a resubmission is acknowledged as a duplicate", func() {
				w := do(h, http.MethodPost, "/applications", validApplication)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})

			Convey("And its status can be read back", func() {
				w := do(h, http.MethodGet, "/applications/app-1", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var res types.Result
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.Status, ShouldEqual, types.StatusPending)
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = fmt.Errorf("submit app-1: %w", service.ErrBackpressure)
			w := do(h, http.MethodPost, "/applications", validApplication)

			Convey("Then the client is asked to back off", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(w)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the service is stopping", func() {
			deps.submitErr = service.ErrNotStarted
			w := do(h, http.MethodPost, "/applications", validApplication)

			Convey("Then the service is reported unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When an unexpected error occurs", func() {
			deps.submitErr = errors.New("disk on fire")
			w := do(h, http.MethodPost, "/applications", validApplication)

			Convey("Then it is an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["message"], ShouldContainSubstring, "api.post_application")
			})
		})

		Convey("When an unknown application is requested", func() {
			w := do(h, http.MethodGet, "/applications/ghost", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["code"], ShouldEqual, "not_found")
			})
		})
	})
}

func TestRankingHandlers(t *testing.T) {
	Convey("Given a server with a populated ranking", t, func() {
		deps := newMockDependencies()
		for i := range 5 {
			deps.ranking = append(deps.ranking, api.Entry{Rank: i + 1, ApplicationID: fmt.Sprintf("a%d", i), Composite: float64(90 - i)})
		}
		h := newTestServer(deps)

		Convey("When the top entries are requested", func() {
			w := do(h, http.MethodGet, "/ranking?limit=3", "")

			Convey("Then they are returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []api.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
				So(entries[0].ApplicationID, ShouldEqual, "a0")
				So(deps.lastPage, ShouldResemble, [2]int{0, 3})
			})
		})

		Convey("When a later page is requested", func() {
			w := do(h, http.MethodGet, "/ranking?limit=2&offset=3", "")

			Convey("Then the offset is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPage, ShouldResemble, [2]int{3, 2})
			})
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"", "?limit=0", "?limit=abc", "?limit=3&offset=-1"} {
				w := do(h, http.MethodGet, "/ranking"+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
			w := do(h, http.MethodGet, "/ranking?limit=11", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When a rank is requested", func() {
			w := do(h, http.MethodGet, "/rank/a2", "")

			Convey("Then the entry is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"rank":3`)
			})

			Convey("And unknown applications are not found", func() {
				w := do(h, http.MethodGet, "/rank/zz", "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestRulesetHandler(t *testing.T) {
	Convey("Given an API server", t, func() {
		h := newTestServer(newMockDependencies())

		Convey("When the rulesets are listed", func() {
			w := do(h, http.MethodGet, "/rulesets", "")

			Convey("Then the default version is named", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"default":"`+rules.DefaultVersion+`"`)
			})
		})

		Convey("When one ruleset is requested", func() {
			w := do(h, http.MethodGet, "/rulesets/"+rules.DefaultVersion, "")

			Convey("Then it is returned as a loadable YAML document", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/yaml")
				rs, err := rules.Parse(strings.NewReader(w.Body.String()))
				So(err, ShouldBeNil)
				So(rs, ShouldResemble, rules.Default())
			})
		})

		Convey("When an unknown ruleset is requested", func() {
			w := do(h, http.MethodGet, "/rulesets/1999", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given a wrapped API error", t, func() {
		cause := errors.New("unexpected EOF")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both kind and cause are visible", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: unexpected EOF")
		})

		Convey("And helpers handle missing parts", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
			So(errors.Is(api.Wrap("api.op", cause), api.ErrBadRequest), ShouldBeFalse)
		})
	})
}
