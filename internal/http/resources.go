package httpserver

import (
	"net/http"
	"net/url"
	"time"

	"github.com/Clark-Hu/horror-movies-api/internal/links"
	"github.com/Clark-Hu/horror-movies-api/internal/metrics"
	"github.com/Clark-Hu/horror-movies-api/internal/paging"
)

const dateLayout = "2006-01-02"

// resource is a single DTO with its hypermedia controls.
type resource[T any] struct {
	Data  T            `json:"data"`
	Links []links.Link `json:"links"`
}

// collection is one page of resources plus navigation links.
type collection[T any] struct {
	Value []resource[T] `json:"value"`
	Links []links.Link  `json:"links"`
	Page  paging.Page   `json:"page"`
}

func newResource[T any](b links.Builder, routes links.ResourceRoutes, id int64, dto T) (resource[T], error) {
	itemLinks, err := b.Item(routes, id)
	if err != nil {
		return resource[T]{}, err
	}
	return resource[T]{Data: dto, Links: itemLinks}, nil
}

func newCollection[E, T any](
	b links.Builder,
	routes links.ResourceRoutes,
	list paging.List[E],
	filters url.Values,
	idOf func(E) int64,
	toDTO func(E) T,
) (collection[T], error) {
	navLinks, err := b.Collection(routes.List, list.Page, filters)
	if err != nil {
		return collection[T]{}, err
	}

	values := make([]resource[T], 0, len(list.Items))
	for _, item := range list.Items {
		res, err := newResource(b, routes, idOf(item), toDTO(item))
		if err != nil {
			return collection[T]{}, err
		}
		values = append(values, res)
	}
	return collection[T]{Value: values, Links: navLinks, Page: list.Page}, nil
}

// linkBuilder binds the registry to the public origin of r.
func (s *Server) linkBuilder(r *http.Request) links.Builder {
	if s.publicBase != nil {
		return s.links.Builder(s.publicBase)
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return s.links.Builder(&url.URL{Scheme: scheme, Host: r.Host})
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolFilter(b bool) string {
	if !b {
		return ""
	}
	return "true"
}

func (s *Server) respondResource(w http.ResponseWriter, r *http.Request, status int, resourceName string, routes links.ResourceRoutes, id int64, dto any) {
	body, err := newResource(s.linkBuilder(r), routes, id, dto)
	if err != nil {
		metrics.LinkBuildFailures.WithLabelValues(resourceName).Inc()
		s.respondFault(w, r, err, "Failed to build links for "+resourceName, "")
		return
	}
	s.respondJSON(w, status, body)
}

// respondCreated answers 201 with a Location header pointing at the new item.
func (s *Server) respondCreated(w http.ResponseWriter, r *http.Request, resourceName string, routes links.ResourceRoutes, id int64, dto any) {
	b := s.linkBuilder(r)
	location, err := b.Href(routes.Get, id)
	if err != nil {
		metrics.LinkBuildFailures.WithLabelValues(resourceName).Inc()
		s.respondFault(w, r, err, "Failed to build links for "+resourceName, "")
		return
	}
	w.Header().Set("Location", location)
	s.respondResource(w, r, http.StatusCreated, resourceName, routes, id, dto)
}
