// db/repo_activity.go
package db

import (
	"context"
	"errors"
	"time"

	"Gin_postgres_redis_club_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrActivityNotStale = errors.New("activity is not stale")
	ErrBadActivityState = errors.New("unknown activity status")
)

func (r *Repo) CreateActivity(ctx context.Context, a *models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = models.ActivityPlanned
	}
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repo) FindActivityByID(ctx context.Context, id string) (*models.Activity, error) {
	var a models.Activity
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) ListActivities(ctx context.Context, status string, page, size int) ([]models.Activity, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	q := r.DB.WithContext(ctx).Model(&models.Activity{}).Order("start_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var as []models.Activity
	err := q.Offset((page - 1) * size).Limit(size).Find(&as).Error
	return as, err
}

type UpdateActivityInput struct {
	Name                *string
	StartAt             *time.Time
	EndAt               *time.Time
	Status              *models.ActivityStatus
	ResponsibleActivity *string
	ResponsibleMaterial *string
}

func (r *Repo) UpdateActivity(ctx context.Context, id string, in UpdateActivityInput) (*models.Activity, error) {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.StartAt != nil {
		updates["start_at"] = *in.StartAt
	}
	if in.EndAt != nil {
		updates["end_at"] = *in.EndAt
	}
	if in.Status != nil {
		switch *in.Status {
		case models.ActivityPlanned, models.ActivityInProgress, models.ActivityFinished, models.ActivityCancelled:
		default:
			return nil, ErrBadActivityState
		}
		updates["status"] = *in.Status
	}
	if in.ResponsibleActivity != nil {
		updates["responsible_activity"] = *in.ResponsibleActivity
	}
	if in.ResponsibleMaterial != nil {
		updates["responsible_material"] = *in.ResponsibleMaterial
	}
	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Activity{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindActivityByID(ctx, id)
}

// StaleActivities 状态还是 in_progress 但结束时间严格早于 now 的活动
// （实现 jobs.Source）
func (r *Repo) StaleActivities(ctx context.Context, now time.Time) ([]models.Activity, error) {
	var as []models.Activity
	err := r.DB.WithContext(ctx).
		Where("status = ? AND end_at < ?", models.ActivityInProgress, now).
		Order("end_at ASC").
		Find(&as).Error
	return as, err
}

// FinalizeStaleActivity 管理员确认补登结束。条件写：只有真 stale 的才改，
// 避免把还在进行的活动误关
func (r *Repo) FinalizeStaleActivity(ctx context.Context, id string, now time.Time) (*models.Activity, error) {
	res := r.DB.WithContext(ctx).Model(&models.Activity{}).
		Where("id = ? AND status = ? AND end_at < ?", id, models.ActivityInProgress, now).
		Update("status", models.ActivityFinished)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// 分不清是不存在还是不 stale，再查一次给出准确错误
		if _, err := r.FindActivityByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrActivityNotStale
	}
	return r.FindActivityByID(ctx, id)
}
