package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/dinebuddies-api/models"
	"github.com/linesmerrill/dinebuddies-api/services"
)

func TestCheckEligibility(t *testing.T) {
	tests := []struct {
		name     string
		user     models.User
		inv      models.Invitation
		eligible bool
		reason   string
	}{
		{
			name:   "gender mismatch",
			user:   models.User{Gender: models.GenderFemale, Age: 25},
			inv:    models.Invitation{GenderPreference: models.GenderMale},
			reason: "this invitation is for male guests only",
		},
		{
			name:   "too old",
			user:   models.User{Gender: models.GenderMale, Age: 30},
			inv:    models.Invitation{AgeRange: "18-25"},
			reason: "this invitation is for ages 18-25",
		},
		{
			name:     "inside range",
			user:     models.User{Age: 22},
			inv:      models.Invitation{AgeRange: "18-25"},
			eligible: true,
		},
		{
			name:     "range is inclusive",
			user:     models.User{Age: 25},
			inv:      models.Invitation{AgeRange: "18-25", GenderPreference: models.GenderAny},
			eligible: true,
		},
		{
			name:   "gender checked before age",
			user:   models.User{Gender: models.GenderMale, Age: 60},
			inv:    models.Invitation{GenderPreference: models.GenderFemale, AgeRange: "18-25"},
			reason: "this invitation is for female guests only",
		},
		{
			name:   "unset gender",
			user:   models.User{Age: 22},
			inv:    models.Invitation{GenderPreference: models.GenderFemale},
			reason: "this invitation is for female guests only",
		},
		{
			name:   "unset age",
			user:   models.User{Gender: models.GenderMale},
			inv:    models.Invitation{AgeRange: "18-25"},
			reason: "this invitation is for ages 18-25",
		},
		{
			name:   "open ended range",
			user:   models.User{Age: 40},
			inv:    models.Invitation{AgeRange: "50+"},
			reason: "this invitation is for ages 50 and up",
		},
		{
			name:     "malformed range means any",
			user:     models.User{Age: 99},
			inv:      models.Invitation{AgeRange: "young"},
			eligible: true,
		},
		{
			name:     "no preferences",
			user:     models.User{},
			inv:      models.Invitation{GenderPreference: models.GenderAny, AgeRange: models.AgeRangeAny},
			eligible: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := services.CheckEligibility(tt.user, tt.inv)
			assert.Equal(t, tt.eligible, res.Eligible)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestParseAgeRange(t *testing.T) {
	min, max, ok := services.ParseAgeRange(" 21 - 35 ")
	assert.True(t, ok)
	assert.Equal(t, 21, min)
	assert.Equal(t, 35, max)

	for _, r := range []string{"", "any", "35-21", "a-b", "21", "-5+"} {
		_, _, ok := services.ParseAgeRange(r)
		assert.False(t, ok, r)
	}
}

func TestValidateInvitationCreation(t *testing.T) {
	f := newFixture(t)
	f.addInvitation(t, models.Invitation{ID: "old", Author: models.Author{ID: "host"}, Date: "2026-03-01"})

	check, err := f.svc.Guard.ValidateInvitationCreation(f.ctx, "host")
	assert.NoError(t, err)
	assert.True(t, check.Valid)

	f.addInvitation(t, models.Invitation{ID: "today", Author: models.Author{ID: "host"}, Date: today})
	check, err = f.svc.Guard.ValidateInvitationCreation(f.ctx, "host")
	assert.NoError(t, err)
	assert.Equal(t, services.CreationCheck{Valid: false, ExistingInvitationID: "today", ExistingDate: today}, check)

	check, err = f.svc.Guard.ValidateInvitationCreation(f.ctx, "someone-else")
	assert.NoError(t, err)
	assert.True(t, check.Valid)
}
