package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/classify"
	"github.com/okian/podium/internal/domain/insight"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies serves canned aggregates.
type mockDependencies struct {
	entries []types.Entry
	err     error

	predictErr error

	lastLimit   int
	lastOffset  int
	lastCountry string
	lastQuery   types.RecordQuery
	lastYear    int
}

func (m *mockDependencies) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if n > len(m.entries) {
		return m.entries, nil
	}
	return m.entries[:n], nil
}

func (m *mockDependencies) Rank(ctx context.Context, country string) (types.Entry, error) {
	if m.err != nil {
		return types.Entry{}, m.err
	}
	for _, e := range m.entries {
		if strings.EqualFold(e.Country, country) {
			return e, nil
		}
	}
	return types.Entry{}, fmt.Errorf("%w: %q", repository.ErrNotFound, country)
}

func (m *mockDependencies) Summary(ctx context.Context) (aggregate.Summary, error) {
	return aggregate.Summary{TotalMedals: 12, UniqueCountries: 2}, m.err
}

func (m *mockDependencies) Countries(ctx context.Context, limit int) ([]aggregate.CountryStats, error) {
	m.lastLimit = limit
	return []aggregate.CountryStats{{Country: "United States", MedalTally: aggregate.MedalTally{Gold: 4, Total: 5}}}, m.err
}

func (m *mockDependencies) Athletes(ctx context.Context, limit int) ([]aggregate.AthleteStats, error) {
	m.lastLimit = limit
	return []aggregate.AthleteStats{{Athlete: "LEWIS, Carl", Country: "United States"}}, m.err
}

func (m *mockDependencies) Sports(ctx context.Context) ([]aggregate.SportStats, error) {
	return []aggregate.SportStats{{Sport: "Aquatics", TotalMedals: 6}}, m.err
}

func (m *mockDependencies) Gender(ctx context.Context) (aggregate.GenderBreakdown, error) {
	return aggregate.GenderBreakdown{}, m.err
}

func (m *mockDependencies) Trends(ctx context.Context) ([]aggregate.YearTrend, error) {
	return []aggregate.YearTrend{{Year: 1976, TotalMedals: 3}}, m.err
}

func (m *mockDependencies) CountryTrend(ctx context.Context, country string) ([]aggregate.YearCount, error) {
	m.lastCountry = country
	return []aggregate.YearCount{{Year: 1984, Medals: 3}}, m.err
}

func (m *mockDependencies) Records(ctx context.Context, q types.RecordQuery) (types.RecordPage, error) {
	m.lastQuery = q
	m.lastLimit, m.lastOffset = q.Limit, q.Offset
	return types.RecordPage{Total: 1, Limit: q.Limit, Offset: q.Offset, Records: []model.Record{{Year: 1976}}}, m.err
}

func (m *mockDependencies) Predict(ctx context.Context, country, sport, gender string, year int) (classify.Prediction, error) {
	m.lastCountry, m.lastYear = country, year
	if m.predictErr != nil {
		return classify.Prediction{}, m.predictErr
	}
	return classify.Prediction{
		Country: country, Sport: sport, Gender: gender, Year: year,
		Target: classify.TargetGold, Probability: 0.8, Positive: true, Confidence: classify.ConfidenceHigh,
	}, m.err
}

func (m *mockDependencies) Insights(ctx context.Context) ([]insight.Insight, error) {
	return []insight.Insight{{Kind: insight.TopCountry, Subject: "United States"}}, m.err
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, 5)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func standings() []types.Entry {
	return []types.Entry{
		{Rank: 1, Country: "United States", Gold: 4, Silver: 1, Total: 5},
		{Rank: 2, Country: "East Germany", Gold: 1, Silver: 1, Total: 2},
		{Rank: 3, Country: "Soviet Union", Bronze: 2, Total: 2},
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(&mockDependencies{entries: standings()})

		Convey("Then health endpoint should expose metrics", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "podium_")
		})

		Convey("And health endpoint should answer JSON clients", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("And stats endpoint should be accessible", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")
		})

		Convey("And stats should narrow to a single key", func() {
			w := get(mux, "/stats?key=started")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "{\"started\":true}\n")

			w = get(mux, "/stats?key=bogus")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("And every analytics route should answer", func() {
			for _, path := range []string{
				"/api/summary", "/api/countries", "/api/athletes", "/api/sports",
				"/api/gender", "/api/trends", "/api/country-trends?country=USA",
				"/api/records", "/api/insights",
				"/api/predict?country=Kenya&sport=Athletics&gender=Men",
			} {
				w := get(mux, path)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			}
		})

		Convey("And non-GET methods should be rejected", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/summary", strings.NewReader("{}"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a server with three countries", t, func() {
		deps := &mockDependencies{entries: standings()}
		mux := newMux(deps)

		Convey("When requesting the top two", func() {
			w := get(mux, "/leaderboard?limit=2")

			Convey("Then two entries should come back in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []types.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Country, ShouldEqual, "United States")
				So(entries[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When the limit is missing or invalid", func() {
			for _, target := range []string{"/leaderboard", "/leaderboard?limit=0", "/leaderboard?limit=abc"} {
				w := get(mux, target)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			}
		})

		Convey("When the limit exceeds the maximum", func() {
			w := get(mux, "/leaderboard?limit=6")

			Convey("Then it should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "limit_exceeded")
			})
		})

		Convey("When the store rejects the limit", func() {
			deps.err = fmt.Errorf("%w: 3", repository.ErrInvalidLimit)
			w := get(mux, "/leaderboard?limit=3")

			Convey("Then it should map to a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the store fails", func() {
			deps.err = errors.New("boom")
			w := get(mux, "/leaderboard?limit=3")

			Convey("Then it should return an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(errorCode(w), ShouldEqual, "internal_error")
				So(w.Body.String(), ShouldContainSubstring, "api.get_leaderboard")
			})
		})
	})
}

func TestRankHandler(t *testing.T) {
	Convey("Given a server with three countries", t, func() {
		mux := newMux(&mockDependencies{entries: standings()})

		Convey("When asking for a country with spaces in its name", func() {
			w := get(mux, "/rank/east%20germany")

			Convey("Then its standing should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entry types.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entry), ShouldBeNil)
				So(entry.Country, ShouldEqual, "East Germany")
				So(entry.Rank, ShouldEqual, 2)
			})
		})

		Convey("When asking for an unknown country", func() {
			w := get(mux, "/rank/Atlantis")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(errorCode(w), ShouldEqual, "not_found")
			})
		})

		Convey("When the country is missing", func() {
			w := get(mux, "/rank/")

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestAnalyticsHandler(t *testing.T) {
	Convey("Given an analytics server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Country trends should require a country", func() {
			w := get(mux, "/api/country-trends")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "country param required")

			w = get(mux, "/api/country-trends?country=United%20States")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastCountry, ShouldEqual, "United States")
		})

		Convey("Countries should pass the limit through", func() {
			w := get(mux, "/api/countries?limit=3")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 3)

			w = get(mux, "/api/countries?limit=-1")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Records should default and bound the page", func() {
			w := get(mux, "/api/records")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 100)
			So(deps.lastOffset, ShouldEqual, 0)

			w = get(mux, "/api/records?limit=10&offset=20")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 10)
			So(deps.lastOffset, ShouldEqual, 20)

			for _, target := range []string{"/api/records?limit=0", "/api/records?limit=1001", "/api/records?offset=x", "/api/records?year=1980s"} {
				So(get(mux, target).Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("Records should pass the filters through", func() {
			w := get(mux, "/api/records?search=%20lewis%20&year=1984&country=United%20States&sport=Athletics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastQuery, ShouldResemble, types.RecordQuery{
				Search:  "lewis",
				Year:    1984,
				Country: "United States",
				Sport:   "Athletics",
				Limit:   100,
			})
		})

		Convey("Predict should require country, sport and gender", func() {
			for _, target := range []string{
				"/api/predict",
				"/api/predict?country=Kenya&sport=Athletics",
				"/api/predict?country=Kenya&gender=Men",
				"/api/predict?sport=Athletics&gender=Men",
				"/api/predict?country=Kenya&sport=Athletics&gender=Men&year=next",
			} {
				w := get(mux, target)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			}
		})

		Convey("Predict should return the model's estimate", func() {
			w := get(mux, "/api/predict?country=Kenya&sport=Athletics&gender=Women&year=2008")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastCountry, ShouldEqual, "Kenya")
			So(deps.lastYear, ShouldEqual, 2008)
			var got classify.Prediction
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got.Probability, ShouldEqual, 0.8)
			So(got.Confidence, ShouldEqual, classify.ConfidenceHigh)
		})

		Convey("Predict should map model errors", func() {
			deps.predictErr = fmt.Errorf("country: %w: %q", classify.ErrUnknownLabel, "Atlantis")
			w := get(mux, "/api/predict?country=Atlantis&sport=Athletics&gender=Men")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")

			deps.predictErr = classify.ErrSingleClass
			w = get(mux, "/api/predict?country=Kenya&sport=Athletics&gender=Men")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(errorCode(w), ShouldEqual, "model_unavailable")
		})

		Convey("Dependency failures should surface as internal errors", func() {
			deps.err = errors.New("service not started")
			w := get(mux, "/api/summary")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "api.get_summary")
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given a server with request ids", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When the client sends an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/summary", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})

		Convey("When the client sends none", func() {
			w := get(mux, "/api/summary")

			Convey("Then a uuid should be generated", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldHaveLength, 36)
			})
		})

		Convey("When the client sends a malformed id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/summary", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "bad id with spaces")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be replaced", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldNotEqual, "bad id with spaces")
				So(w.Header().Get(api.RequestIDHeader), ShouldHaveLength, 36)
			})
		})
	})
}
