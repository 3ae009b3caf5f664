package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/horror-movies-api/internal/paging"
)

type listParams struct {
	Page     int
	PageSize int
}

// queryValue looks a key up case-insensitively, preferring an exact match,
// so that both pagesize and pageSize are honoured.
func queryValue(query url.Values, key string) string {
	if vals, ok := query[key]; ok && len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	for k, vals := range query {
		if strings.EqualFold(k, key) && len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
	}
	return ""
}

// parseListParams applies page defaults. Pages past the end are allowed;
// page sizes above the configured maximum are clamped.
func (s *Server) parseListParams(query url.Values) (listParams, error) {
	params := listParams{Page: paging.DefaultPage, PageSize: s.cfg.DefaultPageSize}

	if val := queryValue(query, "page"); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid page value")
		}
		params.Page = page
	}
	if val := queryValue(query, "pagesize"); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil || size < 1 {
			return params, fmt.Errorf("invalid pagesize value")
		}
		params.PageSize = size
	}
	if s.cfg.MaxPageSize > 0 && params.PageSize > s.cfg.MaxPageSize {
		params.PageSize = s.cfg.MaxPageSize
	}
	return params, nil
}

func parseBoolParam(query url.Values, key string) (bool, error) {
	val := queryValue(query, key)
	if val == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s value", key)
	}
	return b, nil
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}

// linkFilters keeps the non-empty filters so navigation links preserve them.
func linkFilters(pairs ...string) url.Values {
	out := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			out.Set(pairs[i], pairs[i+1])
		}
	}
	return out
}
