package models

import "time"

// AccountType distinguishes what a user is allowed to do
type AccountType string

// Account types
const (
	AccountUser     AccountType = "user"
	AccountBusiness AccountType = "business"
	AccountAdmin    AccountType = "admin"
	AccountGuest    AccountType = "guest"
)

// Gender of a user or the gender preference of an invitation
type Gender string

// Genders. GenderAny is only meaningful as an invitation preference.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderAny    Gender = "any"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID                    string                 `json:"_id" bson:"_id"`
	Name                  string                 `json:"name" bson:"name"`
	Avatar                string                 `json:"avatar" bson:"avatar"`
	Email                 string                 `json:"email" bson:"email"`
	PasswordHash          string                 `json:"-" bson:"passwordHash"`
	AccountType           AccountType            `json:"accountType" bson:"accountType"`
	Gender                Gender                 `json:"gender,omitempty" bson:"gender,omitempty"`
	Age                   int                    `json:"age,omitempty" bson:"age,omitempty"`
	Following             []string               `json:"following" bson:"following"`
	FollowersCount        int                    `json:"followersCount" bson:"followersCount"`
	JoinedCommunities     []string               `json:"joinedCommunities" bson:"joinedCommunities"`
	CancellationHistory   []CancellationRecord   `json:"cancellationHistory" bson:"cancellationHistory"`
	InvitationRestriction *InvitationRestriction `json:"invitationRestriction,omitempty" bson:"invitationRestriction,omitempty"`
	ActiveInvitation      *ActiveInvitation      `json:"activeInvitation,omitempty" bson:"activeInvitation,omitempty"`
	Reputation            int                    `json:"reputation" bson:"reputation"`
	CreatedAt             time.Time              `json:"createdAt" bson:"createdAt"`
}

// IsGuest reports whether the user is browsing without an account
func (u User) IsGuest() bool {
	return u.AccountType == AccountGuest
}

// IsBusiness reports whether the user is a partner venue
func (u User) IsBusiness() bool {
	return u.AccountType == AccountBusiness
}

// Follows reports whether u follows the given user id
func (u User) Follows(id string) bool {
	return contains(u.Following, id)
}

// PublicUser is the user shape safe to hand to other users
type PublicUser struct {
	ID             string      `json:"_id"`
	Name           string      `json:"name"`
	Avatar         string      `json:"avatar"`
	AccountType    AccountType `json:"accountType"`
	FollowersCount int         `json:"followersCount"`
	Reputation     int         `json:"reputation"`
}

// Public strips private fields from a user
func (u User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Avatar:         u.Avatar,
		AccountType:    u.AccountType,
		FollowersCount: u.FollowersCount,
		Reputation:     u.Reputation,
	}
}

// CancellationRecord is one invitation a user cancelled after others engaged with it
type CancellationRecord struct {
	InvitationID         string    `json:"invitationId" bson:"invitationId"`
	Reason               string    `json:"reason" bson:"reason"`
	Timestamp            time.Time `json:"timestamp" bson:"timestamp"`
	ParticipantsAffected int       `json:"participantsAffected" bson:"participantsAffected"`
}

// InvitationRestriction blocks invitation creation until the given time
type InvitationRestriction struct {
	Level             int       `json:"level" bson:"level"`
	Penalty           string    `json:"penalty" bson:"penalty"`
	Reason            string    `json:"reason" bson:"reason"`
	Until             time.Time `json:"until" bson:"until"`
	AppliedAt         time.Time `json:"appliedAt" bson:"appliedAt"`
	CancellationCount int       `json:"cancellationCount" bson:"cancellationCount"`
}

// ActiveInvitation is the author's claim on the day of their current invitation
type ActiveInvitation struct {
	InvitationID string `json:"invitationId" bson:"invitationId"`
	Date         string `json:"date" bson:"date"`
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
