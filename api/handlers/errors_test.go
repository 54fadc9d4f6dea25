package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/dinebuddies-api/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: title is required", services.ErrInvalidInput), http.StatusBadRequest},
		{services.ErrTargetNotFound, http.StatusNotFound},
		{services.ErrGuestNotAllowed, http.StatusForbidden},
		{services.ErrNotHost, http.StatusForbidden},
		{&services.RestrictedError{Reason: "2 cancellations", Until: time.Now(), DaysLeft: 3}, http.StatusForbidden},
		{&services.EligibilityError{Reason: "ages 20-30"}, http.StatusForbidden},
		{&services.DuplicateInvitationError{ExistingID: "inv1"}, http.StatusConflict},
		{services.ErrAlreadyEdited, http.StatusConflict},
		{services.ErrBusinessAccountNotFollowable, http.StatusConflict},
		{services.ErrInvitationFull, http.StatusConflict},
		{&services.StorageError{Op: "insert", Err: errors.New("timeout")}, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
