package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/linesmerrill/dinebuddies-api/models"
)

// EligibilityResult is the verdict of CheckEligibility
type EligibilityResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// CheckEligibility checks user against the invitation's gender preference and
// then its age range. A user who never set a gender or age does not match a
// preference that asks for one.
func CheckEligibility(user models.User, inv models.Invitation) EligibilityResult {
	if pref := inv.GenderPreference; pref != "" && pref != models.GenderAny && user.Gender != pref {
		return EligibilityResult{Reason: fmt.Sprintf("this invitation is for %s guests only", pref)}
	}

	if min, max, ok := ParseAgeRange(inv.AgeRange); ok {
		if user.Age < min || user.Age > max {
			if max == math.MaxInt32 {
				return EligibilityResult{Reason: fmt.Sprintf("this invitation is for ages %d and up", min)}
			}
			return EligibilityResult{Reason: fmt.Sprintf("this invitation is for ages %d-%d", min, max)}
		}
	}
	return EligibilityResult{Eligible: true}
}

// ParseAgeRange parses "min-max" (inclusive) or "min+". It reports false for
// "any", the empty string and anything it cannot read.
func ParseAgeRange(r string) (min, max int, ok bool) {
	r = strings.TrimSpace(r)
	if r == "" || r == models.AgeRangeAny {
		return 0, 0, false
	}

	if strings.HasSuffix(r, "+") {
		min, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(r, "+")))
		if err != nil || min < 0 {
			return 0, 0, false
		}
		return min, math.MaxInt32, true
	}

	lo, hi, found := strings.Cut(r, "-")
	if !found {
		return 0, 0, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, false
	}
	max, err = strconv.Atoi(strings.TrimSpace(hi))
	if err != nil || min < 0 || min > max {
		return 0, 0, false
	}
	return min, max, true
}

// canSee reports whether the invitation's privacy setting lets user find it
func canSee(user models.User, inv models.Invitation) bool {
	if inv.IsHost(user.ID) {
		return true
	}
	switch inv.Privacy {
	case models.PrivacyPrivate:
		for _, id := range inv.InvitedUserIDs {
			if id == user.ID {
				return true
			}
		}
		return false
	case models.PrivacyFollowers:
		return user.Follows(inv.Author.ID)
	default:
		return true
	}
}
