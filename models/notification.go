package models

import "time"

// NotificationType names what happened
type NotificationType string

// Notification types sent by the services
const (
	NotificationNewFollower         NotificationType = "new_follower"
	NotificationJoinRequest         NotificationType = "join_request"
	NotificationRequestApproved     NotificationType = "request_approved"
	NotificationInvitationUpdated   NotificationType = "invitation_updated"
	NotificationInvitationCancelled NotificationType = "invitation_cancelled"
	NotificationPartnerMemberJoined NotificationType = "partner_member_joined"
	NotificationPartnerGroupFull    NotificationType = "partner_group_full"
	NotificationCommunityRemoved    NotificationType = "community_removed"
	NotificationCommunityMessage    NotificationType = "community_message"
)

// Notification holds the structure for the notifications collection in mongo
type Notification struct {
	ID        string                 `json:"_id" bson:"_id"`
	UserID    string                 `json:"userId" bson:"userId"`
	Type      NotificationType       `json:"type" bson:"type"`
	Title     string                 `json:"title" bson:"title"`
	Message   string                 `json:"message" bson:"message"`
	Payload   map[string]interface{} `json:"payload,omitempty" bson:"payload,omitempty"`
	Read      bool                   `json:"read" bson:"read"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}
