// db/repo_loan.go
package db

import (
	"context"
	"errors"
	"time"

	"Gin_postgres_redis_club_tool/models"
	"Gin_postgres_redis_club_tool/rules"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 业务规则错误：调用方可修正，不重试
var (
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidTransition   = errors.New("invalid loan state transition")
	ErrMaterialNotLoanable = errors.New("material is not loanable")
	ErrTooManyOpenLoans    = errors.New("member open loan limit reached")
)

// Quantity Ledger：占用 = pending/active/pending_return 的数量之和
// 每次现算，不存冗余计数列，避免漂移
func loanedQuantityTx(tx *gorm.DB, materialID string) (int, error) {
	var n int64
	err := tx.Model(&models.Loan{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("material_id = ? AND state IN ?", materialID, models.OpenLoanStates).
		Scan(&n).Error
	return int(n), err
}

func (r *Repo) LoanedQuantity(ctx context.Context, materialID string) (int, error) {
	return loanedQuantityTx(r.DB.WithContext(ctx), materialID)
}

// AvailableQuantity 可借件数（读路径，不加锁；写路径在事务里重算）
func (r *Repo) AvailableQuantity(ctx context.Context, materialID string) (int, error) {
	m, err := r.FindMaterialByID(ctx, materialID)
	if err != nil {
		return 0, err
	}
	loaned, err := r.LoanedQuantity(ctx, materialID)
	if err != nil {
		return 0, err
	}
	return rules.AvailableQuantity(m.TotalQty, loaned), nil
}

type CreateLoanInput struct {
	MaterialID string
	BorrowerID string
	Quantity   int
	ActivityID *string
	DueAt      *time.Time
	Note       string

	// 来自 MaterialSettings，controller 读一次带进来
	RequireApproval bool
	MaxOpenLoans    int // <=0 不限制
	DefaultLoanDays int
}

// CreateLoan 借出：原子操作 = 锁材料行 → 事务内重算库存 → 校验 → 新建 loan
// 失败不落任何数据
func (r *Repo) CreateLoan(ctx context.Context, in CreateLoanInput) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住材料行，后续同材料的借出/归还串行化
		var m models.Material
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "id = ?", in.MaterialID).Error; err != nil {
			return err
		}
		if !m.State.Loanable() {
			return ErrMaterialNotLoanable
		}

		// 2) 现算占用量，可借不足直接拒绝
		loaned, err := loanedQuantityTx(tx, m.ID)
		if err != nil {
			return err
		}
		if in.Quantity > rules.AvailableQuantity(m.TotalQty, loaned) {
			return ErrInsufficientStock
		}

		// 3) 个人未结清上限（设置里可关）
		if in.MaxOpenLoans > 0 {
			var open int64
			if err := tx.Model(&models.Loan{}).
				Where("borrower_id = ? AND state IN ?", in.BorrowerID, models.OpenLoanStates).
				Count(&open).Error; err != nil {
				return err
			}
			if open >= int64(in.MaxOpenLoans) {
				return ErrTooManyOpenLoans
			}
		}

		// 4) 新建 loan。审批模式下先进 pending，但从创建起就占用库存
		now := time.Now().UTC()
		dueAt := in.DueAt
		if dueAt == nil {
			days := in.DefaultLoanDays
			if days <= 0 {
				days = 14
			}
			d := now.AddDate(0, 0, days)
			dueAt = &d
		}
		state := models.LoanActive
		if in.RequireApproval {
			state = models.LoanPending
		}

		l := &models.Loan{
			ID:         uuid.NewString(),
			MaterialID: m.ID,
			BorrowerID: in.BorrowerID,
			ActivityID: in.ActivityID,
			Quantity:   in.Quantity,
			State:      state,
			BorrowedAt: now,
			DueAt:      dueAt,
			Note:       in.Note,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	return loan, err
}

// transition 统一的状态迁移：锁行 → 查转换表 → 改状态
// mutate 在状态检查通过后、保存前执行附加字段修改
func (r *Repo) transition(ctx context.Context, loanID string, to models.LoanState, mutate func(*models.Loan)) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&l, "id = ?", loanID).Error; err != nil {
			return err
		}
		if !rules.CanTransition(l.State, to) {
			return ErrInvalidTransition
		}
		l.State = to
		if mutate != nil {
			mutate(&l)
		}
		return tx.Save(&l).Error
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ApproveLoan 审批通过：pending → active
func (r *Repo) ApproveLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	return r.transition(ctx, loanID, models.LoanActive, nil)
}

// MarkPendingReturn 借用人申报归还，库存继续占用直到实物验收
func (r *Repo) MarkPendingReturn(ctx context.Context, loanID, reason string) (*models.Loan, error) {
	return r.transition(ctx, loanID, models.LoanPendingReturn, func(l *models.Loan) {
		l.PendingReason = reason
	})
}

// RegisterReturn 验收归还：active/pending_return → returned
// 库存自动释放（Ledger 不再统计 returned），通知放 controller 做
func (r *Repo) RegisterReturn(ctx context.Context, loanID, note string) (*models.Loan, error) {
	return r.transition(ctx, loanID, models.LoanReturned, func(l *models.Loan) {
		now := time.Now().UTC()
		l.ReturnedAt = &now
		l.ReturnNote = note
	})
}

// RegisterLoss 登记丢失。不释放库存：丢失件从有效总量里消失，
// 账面总量的核销走 AdjustQuantity，两件事分开做
func (r *Repo) RegisterLoss(ctx context.Context, loanID string) (*models.Loan, error) {
	return r.transition(ctx, loanID, models.LoanLost, nil)
}

// CancelPendingLoan 撤销还没批的申请（直接删行，不进终态）
func (r *Repo) CancelPendingLoan(ctx context.Context, loanID, requesterID string, isAdmin bool) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Loan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&l, "id = ?", loanID).Error; err != nil {
			return err
		}
		if l.State != models.LoanPending {
			return ErrInvalidTransition
		}
		if !isAdmin && l.BorrowerID != requesterID {
			return gorm.ErrRecordNotFound // 不暴露别人的申请
		}
		return tx.Delete(&l).Error
	})
}

// MarkActivityPendingReturn 活动收队：把该活动下所有 active 借用批量申报归还
// 单条不符合条件跳过不报错，返回成功/跳过数
func (r *Repo) MarkActivityPendingReturn(ctx context.Context, activityID, reason string) (affected, skipped int, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loans []models.Loan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("activity_id = ? AND state IN ?", activityID, models.OpenLoanStates).
			Find(&loans).Error; err != nil {
			return err
		}
		for i := range loans {
			if !rules.CanTransition(loans[i].State, models.LoanPendingReturn) {
				skipped++
				continue
			}
			loans[i].State = models.LoanPendingReturn
			loans[i].PendingReason = reason
			if err := tx.Save(&loans[i]).Error; err != nil {
				return err
			}
			affected++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return affected, skipped, nil
}

func (r *Repo) FindLoanByID(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

type LoanFilter struct {
	BorrowerID string
	MaterialID string
	ActivityID string
	Status     string // open | closed | 具体状态
	Page, Size int
}

func (r *Repo) ListLoans(ctx context.Context, f LoanFilter) ([]models.Loan, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 || f.Size > 100 {
		f.Size = 20
	}
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).Order("borrowed_at DESC")
	if f.BorrowerID != "" {
		q = q.Where("borrower_id = ?", f.BorrowerID)
	}
	if f.MaterialID != "" {
		q = q.Where("material_id = ?", f.MaterialID)
	}
	if f.ActivityID != "" {
		q = q.Where("activity_id = ?", f.ActivityID)
	}
	switch f.Status {
	case "", "all":
	case "open":
		q = q.Where("state IN ?", models.OpenLoanStates)
	case "closed":
		q = q.Where("state IN ?", []models.LoanState{models.LoanReturned, models.LoanLost})
	default:
		q = q.Where("state = ?", f.Status)
	}
	var ls []models.Loan
	if err := q.Offset((f.Page - 1) * f.Size).Limit(f.Size).Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

// ListMyOpenLoans 普通用户：自己手上未结清的借用
func (r *Repo) ListMyOpenLoans(ctx context.Context, userID string) ([]models.Loan, error) {
	var ls []models.Loan
	err := r.DB.WithContext(ctx).
		Where("borrower_id = ? AND state IN ?", userID, models.OpenLoanStates).
		Order("borrowed_at DESC").
		Find(&ls).Error
	return ls, err
}

// CountOutstandingLoans 某活动下未结清借用条数（stale 检测用）
func (r *Repo) CountOutstandingLoans(ctx context.Context, activityID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("activity_id = ? AND state IN ?", activityID, models.OpenLoanStates).
		Count(&n).Error
	return n, err
}
