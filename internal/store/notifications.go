package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
)

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return translate("create notification", s.conn(ctx).Create(n).Error)
}

// ListNotifications returns the newest notifications of a user. The related
// project is joined when it still exists.
func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	err := s.conn(ctx).
		Preload("RelatedProject").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translate("list notifications", err)
	}
	return rows, nil
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, translate("count unread notifications", err)
	}
	return n, nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, translate("mark notifications read", res.Error)
	}
	return res.RowsAffected, nil
}
