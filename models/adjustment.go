// models/adjustment.go
package models

import "time"

const AdjustmentTable = "club_adjustments"

// Adjustment 库存调整审计记录（丢失核销、盘点修正等）
// 只追加不修改。Delta 为正是入库，为负是核销
type Adjustment struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID    string    `gorm:"type:uuid;index;not null" json:"materialId"`
	Delta         int       `gorm:"not null" json:"delta"`
	TotalAfter    int       `gorm:"not null" json:"totalAfter"`
	ActorID       string    `gorm:"type:uuid;not null" json:"actorId"`
	ActorUsername string    `json:"actorUsername"`
	Reason        string    `gorm:"size:255;not null" json:"reason"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (Adjustment) TableName() string { return AdjustmentTable }
