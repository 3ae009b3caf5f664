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

type actorRepository interface {
	List(ctx context.Context, filters repository.ActorListFilters) (paging.List[domain.Actor], error)
	GetByID(ctx context.Context, id int64, includeMovies bool) (domain.Actor, error)
	Add(ctx context.Context, actor domain.Actor) (domain.Actor, error)
	Update(ctx context.Context, actor domain.Actor) (domain.Actor, error)
	Delete(ctx context.Context, id int64) error
}

var actorRoutes = links.ResourceRoutes{
	List:   "GetAllActors",
	Get:    "GetActorById",
	Update: "UpdateActorDetails",
	Delete: "DeleteActorById",
	Create: "CreateActor",
}

type actorCreateRequest struct {
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

type actorUpdateRequest struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

type actorResponse struct {
	ID          int64                  `json:"id"`
	FirstName   string                 `json:"firstName"`
	LastName    string                 `json:"lastName"`
	DateOfBirth *string                `json:"dateOfBirth"`
	Movies      []actorCastingResponse `json:"movies"`
}

// actorCastingResponse is one movie an actor appeared in.
type actorCastingResponse struct {
	Role  string        `json:"role"`
	Movie movieResponse `json:"movie"`
}

func toActorResponse(a domain.Actor) actorResponse {
	resp := actorResponse{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DateOfBirth: formatDate(a.DateOfBirth),
	}
	if a.Castings != nil {
		resp.Movies = make([]actorCastingResponse, 0, len(a.Castings))
		for _, c := range a.Castings {
			entry := actorCastingResponse{Role: c.Role}
			if c.Movie != nil {
				entry.Movie = toMovieResponse(*c.Movie)
			}
			resp.Movies = append(resp.Movies, entry)
		}
	}
	return resp
}

func actorID(a domain.Actor) int64 { return a.ID }

func (s *Server) handleListActors(w http.ResponseWriter, r *http.Request) {
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
	filters := repository.ActorListFilters{
		FirstName:     queryValue(query, "firstName"),
		Page:          params.Page,
		PageSize:      params.PageSize,
		IncludeMovies: includeMovies,
	}

	list, err := s.actors.List(r.Context(), filters)
	if err != nil {
		s.respondFault(w, r, err, "Failed to retrieve actors", "")
		return
	}

	body, err := newCollection(s.linkBuilder(r), actorRoutes, list,
		linkFilters("firstName", filters.FirstName, "includeMovies", boolFilter(includeMovies)),
		actorID, toActorResponse)
	if err != nil {
		metrics.LinkBuildFailures.WithLabelValues("actors").Inc()
		s.respondFault(w, r, err, "Failed to retrieve actors", " while building links")
		return
	}
	s.respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetActor(w http.ResponseWriter, r *http.Request) {
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

	actor, err := s.actors.GetByID(r.Context(), id, includeMovies)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Actor with Id %d was not found.", id))
			return
		}
		s.respondFault(w, r, err, "Failed to retrieve actor with id "+strconv.FormatInt(id, 10), "")
		return
	}

	s.respondResource(w, r, http.StatusOK, "actors", actorRoutes, actor.ID, toActorResponse(actor))
}

func (s *Server) handleCreateActor(w http.ResponseWriter, r *http.Request) {
	var req actorCreateRequest
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

	created, err := s.actors.Add(r.Context(), domain.Actor{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: born,
	})
	if err != nil {
		s.respondFault(w, r, err, "Failed to create the actor", " when attempting to add data to the database")
		return
	}

	s.respondCreated(w, r, "actors", actorRoutes, created.ID, toActorResponse(created))
}

func (s *Server) handleUpdateActor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	var req actorUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	notFound := fmt.Sprintf("Could not update actor. Actor with Id %d was not found.", id)

	actor, err := s.actors.GetByID(r.Context(), id, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", notFound)
			return
		}
		s.respondFault(w, r, err, "Failed to update the actor", " when attempting to update data in the database")
		return
	}

	if req.FirstName != nil {
		actor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		actor.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		born, err := parseDate(req.DateOfBirth)
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "dateOfBirth must follow YYYY-MM-DD format")
			return
		}
		actor.DateOfBirth = born
	}

	if _, err := s.actors.Update(r.Context(), actor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", notFound)
			return
		}
		s.respondFault(w, r, err, "Failed to update the actor", " when attempting to update data in the database")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteActor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.actors.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("Could not delete actor. Actor with Id %d was not found.", id))
			return
		}
		s.respondFault(w, r, err, "Failed to delete the actor", " when attempting to delete data from the database")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
