// Package memdb keeps every collection in process memory. It backs local runs
// (STORE_DRIVER=memory) and the service tests, and mirrors the guarded
// update semantics of the mongo implementations in package databases.
package memdb

import (
	"context"
	"sync"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
)

// Store holds the collections
type Store struct {
	mu            sync.RWMutex
	txMu          sync.Mutex
	users         map[string]models.User
	invitations   map[string]models.Invitation
	notifications []models.Notification
}

// New returns an empty store
func New() *Store {
	return &Store{
		users:       make(map[string]models.User),
		invitations: make(map[string]models.Invitation),
	}
}

// Users returns the user collection
func (s *Store) Users() databases.UserDatabase {
	return &userCollection{s: s}
}

// Invitations returns the invitation collection
func (s *Store) Invitations() databases.InvitationDatabase {
	return &invitationCollection{s: s}
}

// Notifications returns the notification collection
func (s *Store) Notifications() databases.NotificationDatabase {
	return &notificationCollection{s: s}
}

// WithTransaction serializes transactions and restores the previous state
// when fn fails. Writes made outside a transaction while one is running are
// lost if that transaction rolls back.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users         map[string]models.User
	invitations   map[string]models.Invitation
	notifications []models.Notification
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		users:         make(map[string]models.User, len(s.users)),
		invitations:   make(map[string]models.Invitation, len(s.invitations)),
		notifications: append([]models.Notification(nil), s.notifications...),
	}
	for id, u := range s.users {
		snap.users[id] = cloneUser(u)
	}
	for id, inv := range s.invitations {
		snap.invitations[id] = cloneInvitation(inv)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.invitations = snap.invitations
	s.notifications = snap.notifications
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}

func cloneUser(u models.User) models.User {
	u.Following = cloneStrings(u.Following)
	u.JoinedCommunities = cloneStrings(u.JoinedCommunities)
	u.CancellationHistory = append([]models.CancellationRecord{}, u.CancellationHistory...)
	if u.InvitationRestriction != nil {
		r := *u.InvitationRestriction
		u.InvitationRestriction = &r
	}
	if u.ActiveInvitation != nil {
		a := *u.ActiveInvitation
		u.ActiveInvitation = &a
	}
	return u
}

func cloneInvitation(inv models.Invitation) models.Invitation {
	inv.Requests = cloneStrings(inv.Requests)
	inv.Joined = cloneStrings(inv.Joined)
	inv.PendingChangeApproval = cloneStrings(inv.PendingChangeApproval)
	inv.InvitedUserIDs = cloneStrings(inv.InvitedUserIDs)
	inv.EditHistory = append([]models.EditEntry{}, inv.EditHistory...)
	if inv.Rating != nil {
		r := *inv.Rating
		inv.Rating = &r
	}
	if inv.CompletedAt != nil {
		t := *inv.CompletedAt
		inv.CompletedAt = &t
	}
	if inv.CancelledAt != nil {
		t := *inv.CancelledAt
		inv.CancelledAt = &t
	}
	return inv
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func addToSet(ids []string, id string) ([]string, bool) {
	if indexOf(ids, id) >= 0 {
		return ids, false
	}
	return append(ids, id), true
}

func pull(ids []string, id string) ([]string, bool) {
	i := indexOf(ids, id)
	if i < 0 {
		return ids, false
	}
	return append(ids[:i:i], ids[i+1:]...), true
}
