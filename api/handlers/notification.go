package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/dinebuddies-api/api"
	"github.com/linesmerrill/dinebuddies-api/config"
	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
	"github.com/linesmerrill/dinebuddies-api/notifications"
)

// Notification exposes stored notifications and the live websocket feed
type Notification struct {
	DB  databases.NotificationDatabase
	Hub *notifications.Hub
}

// NotificationsHandler returns the caller's notifications, newest first
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := self(w, r, mux.Vars(r)["userId"])
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 20)
	page := queryInt(r, "page", 1)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := n.DB.FindByUser(ctx, userID, limit, page)
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusInternalServerError, w, err)
		return
	}
	// the frontend expects an array even when there is nothing to show
	if len(list) == 0 {
		list = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkReadHandler marks one of the caller's notifications as read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, ok := self(w, r, vars["userId"])
	if !ok {
		return
	}
	notificationID := vars["notificationId"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := n.DB.MarkRead(ctx, userID, notificationID)
	if err != nil {
		config.ErrorStatus("failed to mark notification as read", http.StatusInternalServerError, w, err)
		return
	}
	if !found {
		config.ErrorStatus("notification not found", http.StatusNotFound, w, fmt.Errorf("notification %s", notificationID))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "notification marked as read"}`))
}

// WebSocketHandler upgrades the connection and streams the caller's
// notifications as they are created
func (n Notification) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	n.Hub.ServeWS(w, r, userID)
}
