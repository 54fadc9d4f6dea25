package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linesmerrill/dinebuddies-api/api"
	"github.com/linesmerrill/dinebuddies-api/config"
	"github.com/linesmerrill/dinebuddies-api/services"
)

var errUnauthenticated = errors.New("missing authenticated user")

// statusFor maps a service error kind to an http status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTargetNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrGuestNotAllowed),
		errors.Is(err, services.ErrNotHost),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrRestrictedAccount),
		errors.Is(err, services.ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, services.ErrBusinessAccountNotFollowable),
		errors.Is(err, services.ErrAlreadyEdited),
		errors.Is(err, services.ErrDuplicateDailyInvitation),
		errors.Is(err, services.ErrInvitationFull),
		errors.Is(err, services.ErrInvitationCancelled),
		errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrNotCompleted),
		errors.Is(err, services.ErrAlreadyRated),
		errors.Is(err, services.ErrAlreadyRequested),
		errors.Is(err, services.ErrNotPending),
		errors.Is(err, services.ErrNotMember):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeServiceError logs err and writes the matching status and body
func writeServiceError(message string, w http.ResponseWriter, err error) {
	config.ErrorStatus(message, statusFor(err), w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(status)
	w.Write(b)
}

// actor returns the authenticated user's id or writes a 401
func actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := api.ActorFrom(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errUnauthenticated)
	}
	return id, ok
}

// self returns the actor when they match the {userId} route var, otherwise
// writes a 403
func self(w http.ResponseWriter, r *http.Request, userID string) (string, bool) {
	id, ok := actor(w, r)
	if !ok {
		return "", false
	}
	if id != userID {
		config.ErrorStatus("cannot act on behalf of another user", http.StatusForbidden, w, services.ErrForbidden)
		return "", false
	}
	return id, true
}
