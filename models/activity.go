// models/activity.go
package models

import "time"

const ActivityTable = "club_activities"

type ActivityStatus string

const (
	ActivityPlanned    ActivityStatus = "planned"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityFinished   ActivityStatus = "finished"
	ActivityCancelled  ActivityStatus = "cancelled"
)

// Activity 俱乐部活动，材料借用可挂在活动下
// 状态本应随时间推进，但经常滞后于现实，由 stale 检测任务发现并提醒
type Activity struct {
	ID     string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string         `gorm:"size:200;not null" json:"name"`
	Status ActivityStatus `gorm:"size:20;not null;default:'planned';index" json:"status"`

	StartAt time.Time `gorm:"not null" json:"startAt"`
	EndAt   time.Time `gorm:"index;not null" json:"endAt"`

	// 两个责任人：活动负责人 + 材料负责人（可以是同一个人）
	ResponsibleActivity string `gorm:"type:uuid;not null" json:"responsibleActivity"`
	ResponsibleMaterial string `gorm:"type:uuid" json:"responsibleMaterial"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Activity) TableName() string { return ActivityTable }
