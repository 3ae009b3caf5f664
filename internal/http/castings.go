package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Clark-Hu/horror-movies-api/internal/domain"
	"github.com/Clark-Hu/horror-movies-api/internal/repository"
	"github.com/Clark-Hu/horror-movies-api/internal/validation"
)

const (
	routeUpsertCasting = "UpsertCasting"
	routeDeleteCasting = "DeleteCasting"
)

type castingRepository interface {
	Upsert(ctx context.Context, params repository.CastingUpsertParams) (domain.Casting, bool, error)
	Delete(ctx context.Context, movieID, actorID int64) error
}

type castingRequest struct {
	Role string `json:"role" validate:"max=200"`
}

type castingResponse struct {
	MovieID int64  `json:"movieId"`
	ActorID int64  `json:"actorId"`
	Role    string `json:"role"`
}

func (s *Server) handleUpsertCasting(w http.ResponseWriter, r *http.Request) {
	movieID, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	actorID, err := parseIDParam(r, "actorId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	var req castingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	casting, inserted, err := s.castings.Upsert(r.Context(), repository.CastingUpsertParams{
		MovieID: movieID,
		ActorID: actorID,
		Role:    req.Role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST",
				fmt.Sprintf("Could not cast actor. Movie with Id %d or actor with Id %d was not found.", movieID, actorID))
			return
		}
		s.respondFault(w, r, err, "Failed to save the casting", " when attempting to add data to the database")
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, castingResponse{
		MovieID: casting.MovieID,
		ActorID: casting.ActorID,
		Role:    casting.Role,
	})
}

func (s *Server) handleDeleteCasting(w http.ResponseWriter, r *http.Request) {
	movieID, err := parseIDParam(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	actorID, err := parseIDParam(r, "actorId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.castings.Delete(r.Context(), movieID, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST",
				fmt.Sprintf("Could not delete casting. Actor with Id %d is not cast in movie with Id %d.", actorID, movieID))
			return
		}
		s.respondFault(w, r, err, "Failed to delete the casting", " when attempting to delete data from the database")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
