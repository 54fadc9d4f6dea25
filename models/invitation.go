package models

import "time"

// MeetingStatus tracks how far along the meetup is
type MeetingStatus string

// Meeting statuses, in the only order they may be reached
const (
	StatusPlanning  MeetingStatus = "planning"
	StatusOnWay     MeetingStatus = "on_way"
	StatusArrived   MeetingStatus = "arrived"
	StatusCompleted MeetingStatus = "completed"
)

var statusOrder = map[MeetingStatus]int{
	StatusPlanning:  0,
	StatusOnWay:     1,
	StatusArrived:   2,
	StatusCompleted: 3,
}

// Valid reports whether s is a known status
func (s MeetingStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Next returns the status that directly follows s
func (s MeetingStatus) Next() (MeetingStatus, bool) {
	switch s {
	case StatusPlanning, "":
		return StatusOnWay, true
	case StatusOnWay:
		return StatusArrived, true
	case StatusArrived:
		return StatusCompleted, true
	}
	return "", false
}

// Privacy controls who can see an invitation
type Privacy string

// Privacy levels
const (
	PrivacyPublic    Privacy = "public"
	PrivacyFollowers Privacy = "followers"
	PrivacyPrivate   Privacy = "private"
)

// AgeRangeAny disables the age filter
const AgeRangeAny = "any"

// Invitation holds the structure for the invitations collection in mongo
type Invitation struct {
	ID                    string        `json:"_id" bson:"_id"`
	Title                 string        `json:"title" bson:"title"`
	Author                Author        `json:"author" bson:"author"`
	PartnerID             string        `json:"partnerId,omitempty" bson:"partnerId,omitempty"`
	Date                  string        `json:"date" bson:"date"`
	Time                  string        `json:"time" bson:"time"`
	Location              string        `json:"location" bson:"location"`
	Lat                   float64       `json:"lat" bson:"lat"`
	Lng                   float64       `json:"lng" bson:"lng"`
	GuestsNeeded          int           `json:"guestsNeeded" bson:"guestsNeeded"`
	GenderPreference      Gender        `json:"genderPreference" bson:"genderPreference"`
	AgeRange              string        `json:"ageRange" bson:"ageRange"`
	Requests              []string      `json:"requests" bson:"requests"`
	Joined                []string      `json:"joined" bson:"joined"`
	MeetingStatus         MeetingStatus `json:"meetingStatus" bson:"meetingStatus"`
	CompletedAt           *time.Time    `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	EditHistory           []EditEntry   `json:"editHistory" bson:"editHistory"`
	PendingChangeApproval []string      `json:"pendingChangeApproval" bson:"pendingChangeApproval"`
	Privacy               Privacy       `json:"privacy" bson:"privacy"`
	InvitedUserIDs        []string      `json:"invitedUserIds,omitempty" bson:"invitedUserIds,omitempty"`
	Rating                *Rating       `json:"rating,omitempty" bson:"rating,omitempty"`
	CancelledAt           *time.Time    `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	CancelReason          string        `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`
	CreatedAt             time.Time     `json:"createdAt" bson:"createdAt"`
}

// Author is the denormalized host of an invitation
type Author struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar" bson:"avatar"`
}

// EditEntry records the single reschedule an invitation may have
type EditEntry struct {
	EditedAt time.Time `json:"editedAt" bson:"editedAt"`
	EditedBy string    `json:"editedBy" bson:"editedBy"`
	OldDate  string    `json:"oldDate" bson:"oldDate"`
	OldTime  string    `json:"oldTime" bson:"oldTime"`
	NewDate  string    `json:"newDate" bson:"newDate"`
	NewTime  string    `json:"newTime" bson:"newTime"`
}

// Rating left on a completed invitation
type Rating struct {
	Stars   int       `json:"stars" bson:"stars"`
	RatedBy string    `json:"ratedBy" bson:"ratedBy"`
	RatedAt time.Time `json:"ratedAt" bson:"ratedAt"`
}

// IsHost reports whether userID authored the invitation
func (i Invitation) IsHost(userID string) bool {
	return i.Author.ID == userID
}

// HasRequested reports whether userID has a pending join request
func (i Invitation) HasRequested(userID string) bool {
	return contains(i.Requests, userID)
}

// HasJoined reports whether userID is an approved participant
func (i Invitation) HasJoined(userID string) bool {
	return contains(i.Joined, userID)
}

// AwaitingNewTime reports whether userID still has to confirm a reschedule
func (i Invitation) AwaitingNewTime(userID string) bool {
	return contains(i.PendingChangeApproval, userID)
}

// IsCancelled reports whether the host called the invitation off
func (i Invitation) IsCancelled() bool {
	return i.CancelledAt != nil
}

// IsFull reports whether the approved participants fill every seat
func (i Invitation) IsFull() bool {
	return len(i.Joined) >= i.GuestsNeeded
}
