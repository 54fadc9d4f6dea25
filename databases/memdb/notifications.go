package memdb

import (
	"context"
	"sort"

	"github.com/linesmerrill/dinebuddies-api/models"
)

type notificationCollection struct {
	s *Store
}

func (c *notificationCollection) InsertOne(ctx context.Context, notification models.Notification) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.notifications = append(c.s.notifications, notification)
	return nil
}

func (c *notificationCollection) FindByUser(ctx context.Context, userID string, limit, page int) ([]models.Notification, error) {
	c.s.mu.RLock()
	mine := []models.Notification{}
	for _, n := range c.s.notifications {
		if n.UserID == userID {
			mine = append(mine, n)
		}
	}
	c.s.mu.RUnlock()

	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start > len(mine) {
		start = len(mine)
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], nil
}

func (c *notificationCollection) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for i, n := range c.s.notifications {
		if n.ID == notificationID && n.UserID == userID {
			c.s.notifications[i].Read = true
			return true, nil
		}
	}
	return false, nil
}
