package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Clark-Hu/horror-movies-api/internal/domain"
	"github.com/Clark-Hu/horror-movies-api/internal/links"
	"github.com/Clark-Hu/horror-movies-api/internal/metrics"
	"github.com/Clark-Hu/horror-movies-api/internal/paging"
	"github.com/Clark-Hu/horror-movies-api/internal/repository"
	"github.com/Clark-Hu/horror-movies-api/internal/validation"
)

type directorRepository interface {
	List(ctx context.Context, filters repository.DirectorListFilters) (paging.List[domain.Director], error)
	GetByID(ctx context.Context, id int64, includeMovies bool) (domain.Director, error)
	Add(ctx context.Context, director domain.Director) (domain.Director, error)
	Update(ctx context.Context, director domain.Director) (domain.Director, error)
	Delete(ctx context.Context, id int64) error
}

var directorRoutes = links.ResourceRoutes{
	List:   "GetAllDirectors",
	Get:    "GetDirectorById",
	Update: "UpdateDirectorDetails",
	Delete: "DeleteDirectorById",
	Create: "CreateDirector",
}

type directorCreateRequest struct {
	FirstName    string  `json:"firstName" validate:"required,max=100"`
	LastName     string  `json:"lastName" validate:"required,max=100"`
	BirthCountry string  `json:"birthCountry" validate:"max=100"`
	DateOfBirth  *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

// directorUpdateRequest only touches the fields present in the body.
type directorUpdateRequest struct {
	FirstName    *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName     *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	BirthCountry *string `json:"birthCountry" validate:"omitempty,max=100"`
	DateOfBirth  *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

// directorResponse encodes Movies as null unless they were requested, and as
// [] when requested but the director has none.
type directorResponse struct {
	ID           int64           `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	BirthCountry string          `json:"birthCountry"`
	DateOfBirth  *string         `json:"dateOfBirth"`
	Movies       []movieResponse `json:"movies"`
}

func toDirectorResponse(d domain.Director) directorResponse {
	resp := directorResponse{
		ID:           d.ID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		BirthCountry: d.BirthCountry,
		DateOfBirth:  formatDate(d.DateOfBirth),
	}
	if d.Movies != nil {
		resp.Movies = make([]movieResponse, 0, len(d.Movies))
		for _, m := range d.Movies {
			resp.Movies = append(resp.Movies, toMovieResponse(m))
		}
	}
	return resp
}

func directorID(d domain.Director) int64 { return d.ID }

func (s *Server) handleListDirectors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, err := s.parseListParams(query)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	includeMovies, err := parseBoolParam(query, "includeMovies")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	filters := repository.DirectorListFilters{
		BirthCountry:  queryValue(query, "birthCountry"),
		Page:          params.Page,
		PageSize:      params.PageSize,
		IncludeMovies: includeMovies,
	}

	list, err := s.directors.List(r.Context(), filters)
	if err != nil {
		s.respondFault(w, r, err, "Failed to retrieve directors", "")
		return
	}

	body, err := newCollection(s.linkBuilder(r), directorRoutes, list,
		linkFilters("birthCountry", filters.BirthCountry, "includeMovies", boolFilter(includeMovies)),
		directorID, toDirectorResponse)
	if err != nil {
		metrics.LinkBuildFailures.WithLabelValues("directors").Inc()
		s.respondFault(w, r, err, "Failed to retrieve directors", " while building links")
		return
	}
	s.respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetDirector(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	includeMovies, err := parseBoolParam(r.URL.Query(), "includeMovies")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	director, err := s.directors.GetByID(r.Context(), id, includeMovies)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Director with Id %d was not found.", id))
			return
		}
		s.respondFault(w, r, err, "Failed to retrieve director with id "+strconv.FormatInt(id, 10), "")
		return
	}

	s.respondResource(w, r, http.StatusOK, "directors", directorRoutes, director.ID, toDirectorResponse(director))
}

func (s *Server) handleCreateDirector(w http.ResponseWriter, r *http.Request) {
	var req directorCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	born, err := parseDate(req.DateOfBirth)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "dateOfBirth must follow YYYY-MM-DD format")
		return
	}

	created, err := s.directors.Add(r.Context(), domain.Director{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BirthCountry: req.BirthCountry,
		DateOfBirth:  born,
	})
	if err != nil {
		s.respondFault(w, r, err, "Failed to create the director", " when attempting to add data to the database")
		return
	}

	s.respondCreated(w, r, "directors", directorRoutes, created.ID, toDirectorResponse(created))
}

func (s *Server) handleUpdateDirector(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	var req directorUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	notFound := fmt.Sprintf("Could not update director. Director with Id %d was not found.", id)

	director, err := s.directors.GetByID(r.Context(), id, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", notFound)
			return
		}
		s.respondFault(w, r, err, "Failed to update the director", " when attempting to update data in the database")
		return
	}

	if req.FirstName != nil {
		director.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		director.LastName = *req.LastName
	}
	if req.BirthCountry != nil {
		director.BirthCountry = *req.BirthCountry
	}
	if req.DateOfBirth != nil {
		born, err := parseDate(req.DateOfBirth)
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "dateOfBirth must follow YYYY-MM-DD format")
			return
		}
		director.DateOfBirth = born
	}

	if _, err := s.directors.Update(r.Context(), director); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", notFound)
			return
		}
		s.respondFault(w, r, err, "Failed to update the director", " when attempting to update data in the database")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteDirector(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.directors.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("Could not delete director. Director with Id %d was not found.", id))
			return
		}
		s.respondFault(w, r, err, "Failed to delete the director", " when attempting to delete data from the database")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
