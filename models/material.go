// models/material.go
package models

import "time"

const MaterialTable = "club_materials"

type MaterialState string

const (
	MaterialAvailable   MaterialState = "available"
	MaterialLoaned      MaterialState = "loaned"
	MaterialMaintenance MaterialState = "maintenance"
	MaterialRetired     MaterialState = "retired"
	MaterialLost        MaterialState = "lost"
)

// Loanable 只有 available/loaned 状态的材料可以继续借出
func (s MaterialState) Loanable() bool {
	return s == MaterialAvailable || s == MaterialLoaned
}

// Material 库存材料（按数量管理，单件物品 TotalQty=1）
// 只退役不删除，历史借用记录要能追溯
type Material struct {
	ID       string        `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string        `gorm:"size:200;not null" json:"name"`
	Category string        `gorm:"size:100;index" json:"category"`
	Unit     string        `gorm:"size:20;not null;default:'pcs'" json:"unit"`
	TotalQty int           `gorm:"not null;default:0" json:"totalQty"` // 账面总量，只由管理员调整变动
	State    MaterialState `gorm:"size:20;not null;default:'available';index" json:"state"`
	Location string        `gorm:"size:200" json:"location"`

	// 材料负责人（归还时通知）
	ManagerID *string `gorm:"type:uuid" json:"managerId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Material) TableName() string { return MaterialTable }
