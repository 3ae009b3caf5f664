// Package links builds hypermedia navigation links from named routes.
//
// Routes are registered once under a stable name (for example
// "GetDirectorById") together with their method and path pattern. Handlers
// then reverse those names into hrefs instead of formatting URLs by hand, so
// a link can never point at a route the router does not serve.
package links

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Clark-Hu/horror-movies-api/internal/paging"
)

var (
	// ErrUnknownRoute is returned when a route name was never registered.
	ErrUnknownRoute = errors.New("links: unknown route")
	// ErrMissingParam is returned when a path parameter has no value.
	ErrMissingParam = errors.New("links: missing route parameter")
)

// Relations emitted by the builder.
const (
	RelCurrentPage = "current page"
	RelFirst       = "first"
	RelLast        = "last"
	RelNext        = "next"
	RelPrevious    = "previous"
	RelSelf        = "self"
	RelDelete      = "delete"
	RelUpdate      = "update"
	RelCreate      = "create"
)

// Link is a single hypermedia control.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type route struct {
	method  string
	pattern string
}

// Registry maps route names to method and path pattern. It is populated
// during server setup and read-only afterwards.
type Registry struct {
	routes map[string]route
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]route)}
}

// Register adds a named route. Registering the same name twice is a
// programming error and panics, mirroring chi's behaviour on bad patterns.
func (r *Registry) Register(name, method, pattern string) {
	if _, exists := r.routes[name]; exists {
		panic(fmt.Sprintf("links: route %q registered twice", name))
	}
	r.routes[name] = route{method: method, pattern: pattern}
}

// Method returns the HTTP method of a named route.
func (r *Registry) Method(name string) (string, error) {
	rt, ok := r.routes[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	return rt.method, nil
}

// Reverse expands the named route's pattern. Params matching a {placeholder}
// fill the path; the rest become the query string. A nil base yields a
// path-only href.
func (r *Registry) Reverse(base *url.URL, name string, params url.Values) (string, error) {
	rt, ok := r.routes[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}

	segments := strings.Split(rt.pattern, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
		val := query.Get(key)
		if val == "" {
			return "", fmt.Errorf("%w: %s in %s", ErrMissingParam, key, name)
		}
		segments[i] = url.PathEscape(val)
		query.Del(key)
	}

	href := strings.Join(segments, "/")
	if encoded := query.Encode(); encoded != "" {
		href += "?" + encoded
	}
	if base == nil {
		return href, nil
	}
	return strings.TrimRight(base.String(), "/") + href, nil
}

// ResourceRoutes names the routes that make up one REST resource.
type ResourceRoutes struct {
	List   string
	Get    string
	Update string
	Delete string
	Create string
}

// Builder produces links relative to one base URL, usually the public origin
// of the current request.
type Builder struct {
	registry *Registry
	base     *url.URL
}

// Builder returns a link builder bound to base.
func (r *Registry) Builder(base *url.URL) Builder {
	return Builder{registry: r, base: base}
}

// Collection returns navigation links for a paged listing. filters are
// carried on every link so that paging keeps the current filter.
func (b Builder) Collection(listRoute string, page paging.Page, filters url.Values) ([]Link, error) {
	method, err := b.registry.Method(listRoute)
	if err != nil {
		return nil, err
	}

	type target struct {
		rel  string
		page int
	}
	targets := []target{
		{RelCurrentPage, page.Number},
		{RelFirst, 1},
		{RelLast, page.LastPage()},
	}
	if !page.IsLastPage() {
		targets = append(targets, target{RelNext, page.Number + 1})
	}
	if !page.IsFirstPage() {
		targets = append(targets, target{RelPrevious, page.Number - 1})
	}

	out := make([]Link, 0, len(targets))
	for _, t := range targets {
		params := url.Values{}
		for k, v := range filters {
			params[k] = v
		}
		params.Set("page", strconv.Itoa(t.page))
		params.Set("pagesize", strconv.Itoa(page.Size))

		href, err := b.registry.Reverse(b.base, listRoute, params)
		if err != nil {
			return nil, err
		}
		out = append(out, Link{Href: href, Rel: t.rel, Method: method})
	}
	return out, nil
}

// Item returns the self/delete/update/create controls for a single resource.
func (b Builder) Item(routes ResourceRoutes, id int64) ([]Link, error) {
	idParams := url.Values{"id": []string{strconv.FormatInt(id, 10)}}
	specs := []struct {
		rel    string
		route  string
		params url.Values
	}{
		{RelSelf, routes.Get, idParams},
		{RelDelete, routes.Delete, idParams},
		{RelUpdate, routes.Update, idParams},
		{RelCreate, routes.Create, nil},
	}

	out := make([]Link, 0, len(specs))
	for _, s := range specs {
		method, err := b.registry.Method(s.route)
		if err != nil {
			return nil, err
		}
		href, err := b.registry.Reverse(b.base, s.route, s.params)
		if err != nil {
			return nil, err
		}
		out = append(out, Link{Href: href, Rel: s.rel, Method: method})
	}
	return out, nil
}

// Href reverses a route that takes a single {id} parameter.
func (b Builder) Href(route string, id int64) (string, error) {
	return b.registry.Reverse(b.base, route, url.Values{"id": []string{strconv.FormatInt(id, 10)}})
}
