package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Clark-Hu/horror-movies-api/internal/domain"
	"github.com/Clark-Hu/horror-movies-api/internal/links"
	"github.com/Clark-Hu/horror-movies-api/internal/metrics"
	"github.com/Clark-Hu/horror-movies-api/internal/paging"
	"github.com/Clark-Hu/horror-movies-api/internal/repository"
	"github.com/Clark-Hu/horror-movies-api/internal/validation"
)

type movieRepository interface {
	List(ctx context.Context, filters repository.MovieListFilters) (paging.List[domain.Movie], error)
	GetByID(ctx context.Context, id int64, includeActors bool) (domain.Movie, error)
	Add(ctx context.Context, movie domain.Movie) (domain.Movie, error)
	Update(ctx context.Context, movie domain.Movie) (domain.Movie, error)
	Delete(ctx context.Context, id int64) error
}

var movieRoutes = links.ResourceRoutes{
	List:   "GetAllMovies",
	Get:    "GetMovieById",
	Update: "UpdateMovieDetails",
	Delete: "DeleteMovieById",
	Create: "CreateMovie",
}

type movieCreateRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	ReleaseYear    int    `json:"releaseYear" validate:"required,gte=1888,lte=2100"`
	Subgenre       string `json:"subgenre" validate:"max=60"`
	RuntimeMinutes *int   `json:"runtimeMinutes" validate:"omitempty,gt=0,lte=1000"`
	DirectorID     int64  `json:"directorId" validate:"required,gt=0"`
}

type movieUpdateRequest struct {
	Title          *string `json:"title" validate:"omitempty,min=1,max=200"`
	ReleaseYear    *int    `json:"releaseYear" validate:"omitempty,gte=1888,lte=2100"`
	Subgenre       *string `json:"subgenre" validate:"omitempty,max=60"`
	RuntimeMinutes *int    `json:"runtimeMinutes" validate:"omitempty,gt=0,lte=1000"`
	DirectorID     *int64  `json:"directorId" validate:"omitempty,gt=0"`
}

type movieResponse struct {
	ID             int64                  `json:"id"`
	Title          string                 `json:"title"`
	ReleaseYear    int                    `json:"releaseYear"`
	Subgenre       string                 `json:"subgenre"`
	RuntimeMinutes *int                   `json:"runtimeMinutes"`
	DirectorID     int64                  `json:"directorId"`
	Actors         []movieCastingResponse `json:"actors"`
}

// movieCastingResponse is one actor in a movie's cast.
type movieCastingResponse struct {
	Role  string        `json:"role"`
	Actor actorResponse `json:"actor"`
}

func toMovieResponse(m domain.Movie) movieResponse {
	resp := movieResponse{
		ID:             m.ID,
		Title:          m.Title,
		ReleaseYear:    m.ReleaseYear,
		Subgenre:       m.Subgenre,
		RuntimeMinutes: m.RuntimeMinutes,
		DirectorID:     m.DirectorID,
	}
	if m.Castings != nil {
		resp.Actors = make([]movieCastingResponse, 0, len(m.Castings))
		for _, c := range m.Castings {
			entry := movieCastingResponse{Role: c.Role}
			if c.Actor != nil {
				entry.Actor = toActorResponse(*c.Actor)
			}
			resp.Actors = append(resp.Actors, entry)
		}
	}
	return resp
}

func movieID(m domain.Movie) int64 { return m.ID }

// buildMovieFilters turns query parameters into repository filters and the
// subset of parameters that navigation links must carry.
func (s *Server) buildMovieFilters(query url.Values) (repository.MovieListFilters, url.Values, error) {
	params, err := s.parseListParams(query)
	if err != nil {
		return repository.MovieListFilters{}, nil, err
	}
	includeActors, err := parseBoolParam(query, "includeActors")
	if err != nil {
		return repository.MovieListFilters{}, nil, err
	}
	filters := repository.MovieListFilters{
		Subgenre:      queryValue(query, "subgenre"),
		Page:          params.Page,
		PageSize:      params.PageSize,
		IncludeActors: includeActors,
	}
	directorParam := queryValue(query, "directorId")
	if directorParam != "" {
		directorID, err := strconv.ParseInt(directorParam, 10, 64)
		if err != nil || directorID < 1 {
			return repository.MovieListFilters{}, nil, fmt.Errorf("invalid directorId value")
		}
		filters.DirectorID = directorID
	}
	return filters, linkFilters(
		"subgenre", filters.Subgenre,
		"directorId", directorParam,
		"includeActors", boolFilter(includeActors),
	), nil
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, carried, err := s.buildMovieFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	list, err := s.movies.List(r.Context(), filters)
	if err != nil {
		s.respondFault(w, r, err, "Failed to retrieve movies", "")
		return
	}

	body, err := newCollection(s.linkBuilder(r), movieRoutes, list, carried, movieID, toMovieResponse)
	if err != nil {
		metrics.LinkBuildFailures.WithLabelValues("movies").Inc()
		s.respondFault(w, r, err, "Failed to retrieve movies", " while building links")
		return
	}
	s.respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	includeActors, err := parseBoolParam(r.URL.Query(), "includeActors")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movie, err := s.movies.GetByID(r.Context(), id, includeActors)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Movie with Id %d was not found.", id))
			return
		}
		s.respondFault(w, r, err, "Failed to retrieve movie with id "+strconv.FormatInt(id, 10), "")
		return
	}

	s.respondResource(w, r, http.StatusOK, "movies", movieRoutes, movie.ID, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	created, err := s.movies.Add(r.Context(), domain.Movie{
		Title:          req.Title,
		ReleaseYear:    req.ReleaseYear,
		Subgenre:       req.Subgenre,
		RuntimeMinutes: req.RuntimeMinutes,
		DirectorID:     req.DirectorID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST",
				fmt.Sprintf("Failed to create movie. Director with Id %d was not found.", req.DirectorID))
			return
		}
		s.respondFault(w, r, err, "Failed to create the movie", " when attempting to add data to the database")
		return
	}

	s.respondCreated(w, r, "movies", movieRoutes, created.ID, toMovieResponse(created))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	var req movieUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	notFound := fmt.Sprintf("Could not update movie. Movie with Id %d was not found.", id)

	movie, err := s.movies.GetByID(r.Context(), id, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", notFound)
			return
		}
		s.respondFault(w, r, err, "Failed to update the movie", " when attempting to update data in the database")
		return
	}

	if req.Title != nil {
		movie.Title = *req.Title
	}
	if req.ReleaseYear != nil {
		movie.ReleaseYear = *req.ReleaseYear
	}
	if req.Subgenre != nil {
		movie.Subgenre = *req.Subgenre
	}
	if req.RuntimeMinutes != nil {
		movie.RuntimeMinutes = req.RuntimeMinutes
	}
	if req.DirectorID != nil {
		movie.DirectorID = *req.DirectorID
	}

	if _, err := s.movies.Update(r.Context(), movie); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", notFound)
		case errors.Is(err, repository.ErrInvalidReference):
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST",
				fmt.Sprintf("Could not update movie. Director with Id %d was not found.", movie.DirectorID))
		default:
			s.respondFault(w, r, err, "Failed to update the movie", " when attempting to update data in the database")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.movies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("Could not delete movie. Movie with Id %d was not found.", id))
			return
		}
		s.respondFault(w, r, err, "Failed to delete the movie", " when attempting to delete data from the database")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
