// models/notification.go
package models

import "time"

const NotificationTable = "club_notifications"

// 通知类型
const (
	NotifyStaleActivity = "stale_activity"
	NotifyLoanReturned  = "loan_returned"
	NotifyLoanApproved  = "loan_approved"
)

// Notification 站内通知。本服务只负责落库，推送/展示交给前端轮询
type Notification struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   string `gorm:"type:uuid;index;not null" json:"userId"`
	Kind     string `gorm:"size:40;not null" json:"kind"`
	Message  string `gorm:"type:text;not null" json:"message"`
	Link     string `gorm:"size:255" json:"link,omitempty"`
	Priority string `gorm:"size:10;not null;default:'normal'" json:"priority"` // normal | high

	ReadAt    *time.Time `gorm:"index" json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (Notification) TableName() string { return NotificationTable }
