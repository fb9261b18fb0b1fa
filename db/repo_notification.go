// db/repo_notification.go
package db

import (
	"context"
	"errors"
	"time"

	"Gin_postgres_redis_club_tool/models"
)

// Notify 通知落库（notification sink 的实现，投递/展示在别处）
func (r *Repo) Notify(ctx context.Context, userID, kind, message, link, priority string) error {
	if priority == "" {
		priority = "normal"
	}
	n := &models.Notification{
		UserID:   userID,
		Kind:     kind,
		Message:  message,
		Link:     link,
		Priority: priority,
	}
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *Repo) ListNotifications(ctx context.Context, userID string, unreadOnly bool, page, size int) ([]models.Notification, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var ns []models.Notification
	err := q.Offset((page - 1) * size).Limit(size).Find(&ns).Error
	return ns, err
}

// MarkNotificationRead 条件写：只能标自己的
func (r *Repo) MarkNotificationRead(ctx context.Context, id uint, userID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("notification not found or already read")
	}
	return nil
}
