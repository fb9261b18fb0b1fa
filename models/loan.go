// models/loan.go
package models

import "time"

const LoanTable = "club_loans"

type LoanState string

const (
	LoanPending       LoanState = "pending"        // 等待管理员批准（审批模式）
	LoanActive        LoanState = "active"         // 已借出
	LoanPendingReturn LoanState = "pending_return" // 借用人申报归还，待实物验收
	LoanReturned      LoanState = "returned"       // 终态
	LoanLost          LoanState = "lost"           // 终态，不释放库存
)

// OpenLoanStates 仍占用库存的状态（Quantity Ledger 只统计这些）
var OpenLoanStates = []LoanState{LoanPending, LoanActive, LoanPendingReturn}

// Open 该状态是否仍占用库存
func (s LoanState) Open() bool {
	return s == LoanPending || s == LoanActive || s == LoanPendingReturn
}

// Terminal 终态不再变更
func (s LoanState) Terminal() bool { return s == LoanReturned || s == LoanLost }

// Loan 一条借用记录：某用户借走某材料的 Quantity 件，可挂在活动下
type Loan struct {
	ID         string  `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID string  `gorm:"type:uuid;index;not null" json:"materialId"`
	BorrowerID string  `gorm:"type:uuid;index;not null" json:"borrowerId"`
	ActivityID *string `gorm:"type:uuid;index" json:"activityId,omitempty"`

	Quantity int       `gorm:"not null" json:"quantity"`
	State    LoanState `gorm:"size:20;not null;default:'active';index" json:"state"`

	BorrowedAt time.Time  `gorm:"index;not null" json:"borrowedAt"`
	DueAt      *time.Time `json:"dueAt,omitempty"`
	ReturnedAt *time.Time `gorm:"index" json:"returnedAt,omitempty"`

	PendingReason string `gorm:"size:255" json:"pendingReason,omitempty"` // 申报归还时的说明
	ReturnNote    string `gorm:"size:255" json:"returnNote,omitempty"`    // 验收备注 / 事故报告
	Note          string `gorm:"size:255" json:"note,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }
