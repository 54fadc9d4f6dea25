package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/dinebuddies-api/api"
	"github.com/linesmerrill/dinebuddies-api/config"
	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
	"github.com/linesmerrill/dinebuddies-api/services"
)

// Community exposes partner community membership
type Community struct {
	UDB        databases.UserDatabase
	Membership *services.CommunityMembership
}

type broadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// JoinCommunityHandler adds the caller to {partnerId}'s community
func (c Community) JoinCommunityHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Membership.JoinCommunity(ctx, actorID, mux.Vars(r)["partnerId"]); err != nil {
		writeServiceError("failed to join community", w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "joined community"})
}

// LeaveCommunityHandler removes the caller from {partnerId}'s community
func (c Community) LeaveCommunityHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Membership.LeaveCommunity(ctx, actorID, mux.Vars(r)["partnerId"]); err != nil {
		writeServiceError("failed to leave community", w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "left community"})
}

// RemoveMemberHandler lets the partner or an admin remove {userId}
func (c Community) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	partnerID := vars["partnerId"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if !c.manages(ctx, w, r, partnerID) {
		return
	}
	if err := c.Membership.RemoveMember(ctx, partnerID, vars["userId"]); err != nil {
		writeServiceError("failed to remove community member", w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// BroadcastHandler sends a message to every member of {partnerId}'s community
func (c Community) BroadcastHandler(w http.ResponseWriter, r *http.Request) {
	partnerID := mux.Vars(r)["partnerId"]
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if !c.manages(ctx, w, r, partnerID) {
		return
	}
	sent, err := c.Membership.BroadcastMessage(ctx, partnerID, req.Title, req.Message)
	if err != nil {
		writeServiceError("failed to broadcast message", w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

// manages reports whether the caller is the partner itself or an admin,
// writing the error response when they are not
func (c Community) manages(ctx context.Context, w http.ResponseWriter, r *http.Request, partnerID string) bool {
	actorID, ok := actor(w, r)
	if !ok {
		return false
	}
	if actorID == partnerID {
		return true
	}
	user, err := c.UDB.FindByID(ctx, actorID)
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusUnauthorized, w, err)
		return false
	}
	if user.AccountType != models.AccountAdmin {
		config.ErrorStatus("only the partner can manage its community", http.StatusForbidden, w, services.ErrForbidden)
		return false
	}
	return true
}
