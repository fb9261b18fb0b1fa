// db/repo_material.go
package db

import (
	"context"
	"errors"
	"strings"

	"Gin_postgres_redis_club_tool/models"
	"Gin_postgres_redis_club_tool/rules"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// 核销量不能把账面总量压到占用量以下，否则 available 会变负
	ErrAdjustBelowLoaned = errors.New("adjustment would drop total below loaned quantity")
	ErrBadMaterialState  = errors.New("unknown material state")
)

func (r *Repo) CreateMaterial(ctx context.Context, m *models.Material) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.State == "" {
		m.State = models.MaterialAvailable
	}
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *Repo) FindMaterialByID(ctx context.Context, id string) (*models.Material, error) {
	var m models.Material
	if err := r.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MaterialRow 列表行：材料 + 现算的占用/可借
type MaterialRow struct {
	models.Material
	LoanedQty    int `json:"loanedQty"`
	AvailableQty int `json:"availableQty"`
}

type MaterialFilter struct {
	Q        string
	Category string
	State    string
	Page     int
	Size     int
}

// ListMaterials 一次查询带出每个材料的占用量（LEFT JOIN 未结清借用求和）
func (r *Repo) ListMaterials(ctx context.Context, f MaterialFilter) ([]MaterialRow, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 || f.Size > 200 {
		f.Size = 50
	}

	q := r.DB.WithContext(ctx).Model(&models.Material{}).
		Select(models.MaterialTable + ".*, COALESCE(open.qty, 0) AS loaned_qty").
		Joins("LEFT JOIN (SELECT material_id, SUM(quantity) AS qty FROM " + models.LoanTable +
			" WHERE state IN ('pending','active','pending_return') GROUP BY material_id) open ON open.material_id = " +
			models.MaterialTable + ".id")
	if s := strings.TrimSpace(f.Q); s != "" {
		q = q.Where("LOWER("+models.MaterialTable+".name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.Category != "" {
		q = q.Where(models.MaterialTable+".category = ?", f.Category)
	}
	if f.State != "" {
		q = q.Where(models.MaterialTable+".state = ?", f.State)
	}

	var rows []MaterialRow
	if err := q.Order(models.MaterialTable + ".created_at DESC").
		Offset((f.Page - 1) * f.Size).Limit(f.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AvailableQty = rules.AvailableQuantity(rows[i].TotalQty, rows[i].LoanedQty)
	}
	return rows, nil
}

type UpdateMaterialInput struct {
	Name      *string
	Category  *string
	Unit      *string
	Location  *string
	ManagerID *string
}

func (r *Repo) UpdateMaterial(ctx context.Context, id string, in UpdateMaterialInput) (*models.Material, error) {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.Unit != nil {
		updates["unit"] = *in.Unit
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.ManagerID != nil {
		updates["manager_id"] = *in.ManagerID
	}
	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Material{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindMaterialByID(ctx, id)
}

// SetMaterialState 状态调整（maintenance / retired / lost ...）。
// 材料从不删除，报废走 retired
func (r *Repo) SetMaterialState(ctx context.Context, id string, state models.MaterialState) (*models.Material, error) {
	switch state {
	case models.MaterialAvailable, models.MaterialLoaned, models.MaterialMaintenance,
		models.MaterialRetired, models.MaterialLost:
	default:
		return nil, ErrBadMaterialState
	}
	res := r.DB.WithContext(ctx).Model(&models.Material{}).Where("id = ?", id).Update("state", state)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindMaterialByID(ctx, id)
}

// AdjustQuantity 账面总量调整（入库 / 丢失核销 / 盘点修正）。
// 原子操作 = 锁材料行 → 校验新总量 → 更新 + 写审计记录
func (r *Repo) AdjustQuantity(ctx context.Context, materialID string, delta int, actorID, actorName, reason string) (*models.Adjustment, error) {
	var adj *models.Adjustment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Material
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "id = ?", materialID).Error; err != nil {
			return err
		}
		newTotal := m.TotalQty + delta
		if newTotal < 0 {
			return ErrAdjustBelowLoaned
		}
		loaned, err := loanedQuantityTx(tx, m.ID)
		if err != nil {
			return err
		}
		if newTotal < loaned {
			return ErrAdjustBelowLoaned
		}
		if err := tx.Model(&m).Update("total_qty", newTotal).Error; err != nil {
			return err
		}
		a := &models.Adjustment{
			ID:            uuid.NewString(),
			MaterialID:    m.ID,
			Delta:         delta,
			TotalAfter:    newTotal,
			ActorID:       actorID,
			ActorUsername: actorName,
			Reason:        reason,
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		adj = a
		return nil
	})
	return adj, err
}

func (r *Repo) ListAdjustments(ctx context.Context, materialID string, page, size int) ([]models.Adjustment, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	q := r.DB.WithContext(ctx).Model(&models.Adjustment{}).Order("created_at DESC")
	if materialID != "" {
		q = q.Where("material_id = ?", materialID)
	}
	var as []models.Adjustment
	err := q.Offset((page - 1) * size).Limit(size).Find(&as).Error
	return as, err
}
