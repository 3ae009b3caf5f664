package httpserver

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/Clark-Hu/horror-movies-api/internal/config"
	"github.com/Clark-Hu/horror-movies-api/internal/domain"
	"github.com/Clark-Hu/horror-movies-api/internal/links"
	"github.com/Clark-Hu/horror-movies-api/internal/logging"
)

const testToken = "secret"

type testDeps struct {
	directors *fakeDirectors
	actors    *fakeActors
	movies    *fakeMovies
	castings  *fakeCastings
}

func testConfig() config.Config {
	return config.Config{
		Port:               "0",
		AuthToken:          testToken,
		DefaultPageSize:    3,
		MaxPageSize:        10,
		ExposeErrorDetails: true,
		ReadTimeoutSecs:    15,
		WriteTimeoutSecs:   15,
		IdleTimeoutSecs:    60,
	}
}

func buildFakeServer(tb testing.TB, cfg config.Config, seed ...domain.Director) (*Server, testDeps) {
	tb.Helper()
	deps := testDeps{
		directors: newFakeDirectors(seed...),
		actors:    newFakeActors(),
		movies:    &fakeMovies{directors: map[int64]bool{1: true}},
		castings:  &fakeCastings{},
	}
	srv := newServer(cfg, fakeHealth{}, repositories{
		directors: deps.directors,
		actors:    deps.actors,
		movies:    deps.movies,
		castings:  deps.castings,
	}, logging.Nop())
	return srv, deps
}

func doRequest(tb testing.TB, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	tb.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			tb.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](tb testing.TB, rec *httptest.ResponseRecorder) T {
	tb.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		tb.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func relSet(ls []links.Link) map[string]links.Link {
	out := make(map[string]links.Link, len(ls))
	for _, l := range ls {
		out[l.Rel] = l
	}
	return out
}

func directorSeed(n int) []domain.Director {
	out := make([]domain.Director, n)
	for i := range out {
		out[i] = domain.Director{FirstName: "Director", LastName: string(rune('A' + i)), BirthCountry: "USA"}
	}
	return out
}

func TestRequireBearer(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + testToken, http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + testToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1.0/directors", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHealthzUnauthenticated(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	srv.health = fakeHealth{err: errors.New("db down")}
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz status = %d, want 503", rec.Code)
	}
}

func TestListDirectorsEnvelope(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig(), directorSeed(5)...)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/directors?page=2&pagesize=2&birthCountry=USA", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody[collection[directorResponse]](t, rec)

	if len(body.Value) != 2 {
		t.Fatalf("expected 2 items, got %d", len(body.Value))
	}
	if body.Page.Number != 2 || body.Page.Size != 2 || body.Page.Count != 3 || body.Page.TotalItems != 5 {
		t.Fatalf("unexpected page metadata: %+v", body.Page)
	}
	if body.Value[0].Data.ID != 3 {
		t.Fatalf("expected first item id 3, got %d", body.Value[0].Data.ID)
	}

	nav := relSet(body.Links)
	for _, rel := range []string{links.RelCurrentPage, links.RelFirst, links.RelLast, links.RelNext, links.RelPrevious} {
		if _, ok := nav[rel]; !ok {
			t.Fatalf("missing %q link in %+v", rel, body.Links)
		}
	}
	next := nav[links.RelNext].Href
	if !strings.HasPrefix(next, "http://example.com/api/v1.0/directors?") {
		t.Fatalf("next href %q should be absolute", next)
	}
	for _, want := range []string{"page=3", "pagesize=2", "birthCountry=USA"} {
		if !strings.Contains(next, want) {
			t.Fatalf("next href %q missing %q", next, want)
		}
	}

	item := relSet(body.Value[0].Links)
	if item[links.RelSelf].Href != "http://example.com/api/v1.0/directors/3" {
		t.Fatalf("self href = %q", item[links.RelSelf].Href)
	}
	if item[links.RelDelete].Method != http.MethodDelete || item[links.RelUpdate].Method != http.MethodPut {
		t.Fatalf("unexpected item link methods: %+v", body.Value[0].Links)
	}
	if item[links.RelCreate].Href != "http://example.com/api/v1.0/directors" {
		t.Fatalf("create href = %q", item[links.RelCreate].Href)
	}
}

func TestListDirectorsFirstAndLastPage(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig(), directorSeed(2)...)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/directors", nil)
	body := decodeBody[collection[directorResponse]](t, rec)
	nav := relSet(body.Links)
	if _, ok := nav[links.RelNext]; ok {
		t.Fatalf("single page must not have next link")
	}
	if _, ok := nav[links.RelPrevious]; ok {
		t.Fatalf("first page must not have previous link")
	}
	if body.Page.Size != 3 {
		t.Fatalf("default page size = %d, want 3", body.Page.Size)
	}
}

func TestListDirectorsBeyondLastPage(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig(), directorSeed(2)...)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/directors?page=9", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[collection[directorResponse]](t, rec)
	if len(body.Value) != 0 {
		t.Fatalf("expected empty page, got %d items", len(body.Value))
	}
	if !strings.Contains(rec.Body.String(), `"value":[]`) {
		t.Fatalf("value must encode as an empty array: %s", rec.Body.String())
	}
}

func TestListDirectorsHugePage(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig(), directorSeed(4)...)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/directors?page=184467440737095516&pagesize=100", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody[collection[directorResponse]](t, rec)
	if len(body.Value) != 0 {
		t.Fatalf("expected empty page, got %d items", len(body.Value))
	}
	nav := relSet(body.Links)
	if _, ok := nav[links.RelNext]; ok {
		t.Fatalf("page past the end must not have a next link")
	}
	if !strings.Contains(nav[links.RelLast].Href, "?page=1&pagesize=10") {
		t.Fatalf("last href = %q, want page 1 of size 10", nav[links.RelLast].Href)
	}
}

func TestListDirectorsBadQuery(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig())

	for _, query := range []string{"page=0", "page=-1", "page=abc", "pagesize=0", "pagesize=x", "includeMovies=maybe"} {
		t.Run(query, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/directors?"+query, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestListDirectorsRepositoryFailure(t *testing.T) {
	tests := []struct {
		name    string
		expose  bool
		message string
	}{
		{"details exposed", true, "Failed to retrieve directors. Exception thrown: connection reset"},
		{"details hidden", false, "Failed to retrieve directors."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.ExposeErrorDetails = tt.expose
			srv, deps := buildFakeServer(t, cfg)
			deps.directors.err = errors.New("connection reset")

			rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/directors", nil)
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d", rec.Code)
			}
			body := decodeBody[errorResponse](t, rec)
			if body.Message != tt.message {
				t.Fatalf("message = %q, want %q", body.Message, tt.message)
			}
		})
	}
}

func TestGetDirector(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig(), directorSeed(1)...)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/directors/1?includeMovies=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[resource[directorResponse]](t, rec)
	if body.Data.ID != 1 || body.Data.LastName != "A" {
		t.Fatalf("unexpected director: %+v", body.Data)
	}
	if len(body.Links) != 4 {
		t.Fatalf("expected 4 item links, got %d", len(body.Links))
	}
	if !strings.Contains(rec.Body.String(), `"movies":[]`) {
		t.Fatalf("included movies should encode as []: %s", rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1.0/directors/1", nil)
	if !strings.Contains(rec.Body.String(), `"movies":null`) {
		t.Fatalf("movies not loaded should encode as null: %s", rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1.0/directors/42", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/v1.0/directors/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestCreateDirector(t *testing.T) {
	srv, deps := buildFakeServer(t, testConfig())

	rec := doRequest(t, srv, http.MethodPost, "/api/v1.0/directors", map[string]any{
		"firstName":    "James",
		"lastName":     "Wan",
		"birthCountry": "Malaysia",
		"dateOfBirth":  "1977-02-26",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody[resource[directorResponse]](t, rec)
	if body.Data.ID < 1 {
		t.Fatalf("expected positive id, got %d", body.Data.ID)
	}
	if body.Data.DateOfBirth == nil || *body.Data.DateOfBirth != "1977-02-26" {
		t.Fatalf("unexpected dateOfBirth: %v", body.Data.DateOfBirth)
	}
	if loc := rec.Header().Get("Location"); loc != "http://example.com/api/v1.0/directors/1" {
		t.Fatalf("Location = %q", loc)
	}
	if len(deps.directors.items) != 1 {
		t.Fatalf("expected director to be stored")
	}
}

func TestCreateDirectorRejectsBadInput(t *testing.T) {
	srv, deps := buildFakeServer(t, testConfig())

	// want 0 accepts any client error.
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing last name", `{"firstName":"James"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"firstName":"James","lastName":"Wan","dateOfBirth":"26/02/1977"}`, http.StatusUnprocessableEntity},
		{"malformed", `{"firstName":`, 0},
		{"empty", ``, 0},
		{"unknown field", `{"firstName":"James","lastName":"Wan","nickname":"JW"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1.0/directors", strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+testToken)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if tt.want == 0 {
				if rec.Code < 400 || rec.Code >= 500 {
					t.Fatalf("status = %d, want 4xx body=%s", rec.Code, rec.Body.String())
				}
				return
			}
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
	if len(deps.directors.items) != 0 {
		t.Fatalf("rejected requests must not store anything")
	}
}

func TestUpdateDirectorPartial(t *testing.T) {
	srv, deps := buildFakeServer(t, testConfig(), domain.Director{FirstName: "John", LastName: "Carpenter", BirthCountry: "USA"})

	rec := doRequest(t, srv, http.MethodPut, "/api/v1.0/directors/1", map[string]any{"birthCountry": "United States"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	got := deps.directors.items[1]
	if got.BirthCountry != "United States" || got.FirstName != "John" || got.LastName != "Carpenter" {
		t.Fatalf("partial update changed wrong fields: %+v", got)
	}
}

func TestUpdateDirectorUnknownID(t *testing.T) {
	srv, deps := buildFakeServer(t, testConfig(), directorSeed(1)...)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1.0/directors/77", map[string]any{"firstName": "Nobody"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody[errorResponse](t, rec)
	if body.Message != "Could not update director. Director with Id 77 was not found." {
		t.Fatalf("message = %q", body.Message)
	}
	if deps.directors.updates != 0 {
		t.Fatalf("no update should have been attempted")
	}
}

func TestDeleteDirector(t *testing.T) {
	srv, deps := buildFakeServer(t, testConfig(), directorSeed(2)...)

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1.0/directors/99", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown id status = %d, want 400", rec.Code)
	}
	if deps.directors.deletes != 0 || len(deps.directors.items) != 2 {
		t.Fatalf("unknown id must not mutate the store")
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1.0/directors/1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := deps.directors.items[1]; ok {
		t.Fatalf("director 1 should be gone")
	}
}

func TestCreateMovieUnknownDirector(t *testing.T) {
	srv, deps := buildFakeServer(t, testConfig())

	rec := doRequest(t, srv, http.MethodPost, "/api/v1.0/movies", map[string]any{
		"title":       "Insidious",
		"releaseYear": 2010,
		"subgenre":    "Supernatural",
		"directorId":  5,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(deps.movies.items) != 0 {
		t.Fatalf("movie must not be stored")
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/v1.0/movies", map[string]any{
		"title":       "Insidious",
		"releaseYear": 2010,
		"directorId":  1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 body=%s", rec.Code, rec.Body.String())
	}
}

func TestListMoviesPassesFilters(t *testing.T) {
	srv, deps := buildFakeServer(t, testConfig())

	rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/movies?subgenre=Slasher&directorId=4&includeActors=true&pageSize=50", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	f := deps.movies.lastFilters
	if f.Subgenre != "Slasher" || f.DirectorID != 4 || !f.IncludeActors {
		t.Fatalf("unexpected filters: %+v", f)
	}
	if f.PageSize != 10 {
		t.Fatalf("page size should be clamped to 10, got %d", f.PageSize)
	}
}

func TestCastings(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig())
	target := "/api/v1.0/movies/1/castings/2"

	rec := doRequest(t, srv, http.MethodPut, target, map[string]any{"role": "Lorraine Warren"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first upsert status = %d, want 201", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPut, target, map[string]any{"role": "Lorraine"})
	if rec.Code != http.StatusOK {
		t.Fatalf("second upsert status = %d, want 200", rec.Code)
	}
	body := decodeBody[castingResponse](t, rec)
	if body.Role != "Lorraine" || body.MovieID != 1 || body.ActorID != 2 {
		t.Fatalf("unexpected casting: %+v", body)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/v1.0/movies/100/castings/2", map[string]any{"role": "Ghost"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid reference status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, target, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodDelete, target, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second delete status = %d, want 400", rec.Code)
	}
}

func TestPublicBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.PublicBaseURL = "https://horror.example.org/"
	srv, _ := buildFakeServer(t, cfg, directorSeed(1)...)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1.0/directors/1", nil)
	body := decodeBody[resource[directorResponse]](t, rec)
	if self := relSet(body.Links)[links.RelSelf].Href; self != "https://horror.example.org/api/v1.0/directors/1" {
		t.Fatalf("self href = %q", self)
	}
}

func TestForwardedProto(t *testing.T) {
	srv, _ := buildFakeServer(t, testConfig(), directorSeed(1)...)

	req := httptest.NewRequest(http.MethodGet, "/api/v1.0/directors/1", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	body := decodeBody[resource[directorResponse]](t, rec)
	if self := relSet(body.Links)[links.RelSelf].Href; !strings.HasPrefix(self, "https://example.com/") {
		t.Fatalf("self href = %q", self)
	}
}
