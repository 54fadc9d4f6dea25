package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/dinebuddies-api/api"
	"github.com/linesmerrill/dinebuddies-api/config"
	"github.com/linesmerrill/dinebuddies-api/models"
	"github.com/linesmerrill/dinebuddies-api/services"
)

// Invitation exposes the invitation lifecycle
type Invitation struct {
	Lifecycle *services.InvitationLifecycle
	Guard     *services.DailyCreationGuard
}

type scheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type statusRequest struct {
	Status models.MeetingStatus `json:"status"`
}

type ratingRequest struct {
	Stars int `json:"stars"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CreateInvitationHandler creates an invitation hosted by the caller
func (i Invitation) CreateInvitationHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var draft services.InvitationDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	inv, err := i.Lifecycle.CreateInvitation(ctx, actorID, draft)
	if err != nil {
		writeServiceError("failed to create invitation", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// ValidateCreationHandler reports whether the caller already hosts an
// upcoming invitation
func (i Invitation) ValidateCreationHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	check, err := i.Guard.ValidateInvitationCreation(ctx, actorID)
	if err != nil {
		writeServiceError("failed to validate invitation creation", w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// InvitationHandler returns one invitation the caller is allowed to see
func (i Invitation) InvitationHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	inv, err := i.Lifecycle.ViewInvitation(ctx, mux.Vars(r)["invitationId"], actorID)
	if err != nil {
		writeServiceError("failed to get invitation by ID", w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// EligibilityHandler reports whether the caller may ask to join
func (i Invitation) EligibilityHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := i.Lifecycle.Eligibility(ctx, mux.Vars(r)["invitationId"], actorID)
	if err != nil {
		writeServiceError("failed to check eligibility", w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RequestToJoinHandler files the caller's join request
func (i Invitation) RequestToJoinHandler(w http.ResponseWriter, r *http.Request) {
	i.act(w, r, "failed to request to join", "join request sent", func(ctx context.Context, invitationID, actorID string) error {
		return i.Lifecycle.RequestToJoin(ctx, invitationID, actorID)
	})
}

// CancelRequestHandler withdraws the caller's pending request
func (i Invitation) CancelRequestHandler(w http.ResponseWriter, r *http.Request) {
	i.act(w, r, "failed to cancel request", "request cancelled", func(ctx context.Context, invitationID, actorID string) error {
		return i.Lifecycle.CancelRequest(ctx, invitationID, actorID)
	})
}

// ApproveUserHandler lets the host accept {userId}
func (i Invitation) ApproveUserHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	inv, err := i.Lifecycle.ApproveUser(ctx, vars["invitationId"], actorID, vars["userId"])
	if err != nil {
		writeServiceError("failed to approve user", w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// RejectUserHandler lets the host turn {userId} down
func (i Invitation) RejectUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	i.act(w, r, "failed to reject user", "request rejected", func(ctx context.Context, invitationID, actorID string) error {
		return i.Lifecycle.RejectUser(ctx, invitationID, actorID, userID)
	})
}

// UpdateScheduleHandler moves the invitation to a new date and time. Only
// allowed once per invitation.
func (i Invitation) UpdateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	inv, err := i.Lifecycle.UpdateInvitationDateTime(ctx, mux.Vars(r)["invitationId"], req.Date, req.Time, actorID)
	if err != nil {
		writeServiceError("failed to update invitation time", w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// ApproveNewTimeHandler confirms the caller still comes after a reschedule
func (i Invitation) ApproveNewTimeHandler(w http.ResponseWriter, r *http.Request) {
	i.act(w, r, "failed to approve new time", "new time approved", func(ctx context.Context, invitationID, actorID string) error {
		return i.Lifecycle.ApproveNewTime(ctx, invitationID, actorID)
	})
}

// RejectNewTimeHandler withdraws the caller after a reschedule
func (i Invitation) RejectNewTimeHandler(w http.ResponseWriter, r *http.Request) {
	i.act(w, r, "failed to reject new time", "new time rejected", func(ctx context.Context, invitationID, actorID string) error {
		return i.Lifecycle.RejectNewTime(ctx, invitationID, actorID)
	})
}

// UpdateStatusHandler advances the meeting status
func (i Invitation) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	i.act(w, r, "failed to update meeting status", "meeting status updated", func(ctx context.Context, invitationID, actorID string) error {
		return i.Lifecycle.UpdateMeetingStatus(ctx, invitationID, actorID, req.Status)
	})
}

// RatingHandler rates a completed invitation
func (i Invitation) RatingHandler(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	i.act(w, r, "failed to submit rating", "rating submitted", func(ctx context.Context, invitationID, actorID string) error {
		return i.Lifecycle.SubmitRating(ctx, invitationID, actorID, req.Stars)
	})
}

// CancelInvitationHandler calls the invitation off and reports any penalty
// the host earned
func (i Invitation) CancelInvitationHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	// the reason is optional, so an empty body is fine
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := i.Lifecycle.CancelInvitation(ctx, mux.Vars(r)["invitationId"], actorID, req.Reason)
	if err != nil {
		writeServiceError("failed to cancel invitation", w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// act runs an operation on {invitationId} for the caller and writes a plain
// success message
func (i Invitation) act(w http.ResponseWriter, r *http.Request, failure, success string, op func(ctx context.Context, invitationID, actorID string) error) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := op(ctx, mux.Vars(r)["invitationId"], actorID); err != nil {
		writeServiceError(failure, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": success})
}
