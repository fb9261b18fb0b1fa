// controllers/material_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/db"
	"Gin_postgres_redis_club_tool/models"
	"Gin_postgres_redis_club_tool/rules"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MaterialController struct{ *Srv }

func NewMaterialController(s *Srv) *MaterialController { return &MaterialController{Srv: s} }

// 管理员录入材料
func (mc *MaterialController) CreateMaterial(c *gin.Context) {
	var in struct {
		Name      string  `json:"name" binding:"required"`
		Category  string  `json:"category"`
		Unit      string  `json:"unit"`
		TotalQty  int     `json:"totalQty" binding:"min=0"`
		Location  string  `json:"location"`
		ManagerID *string `json:"managerId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	m := &models.Material{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Category:  in.Category,
		Unit:      in.Unit,
		TotalQty:  in.TotalQty,
		Location:  in.Location,
		ManagerID: in.ManagerID,
	}
	if m.Unit == "" {
		m.Unit = "pcs"
	}
	if err := mc.Repo.CreateMaterial(c.Request.Context(), m); err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// 列表（含现算的占用/可借）
func (mc *MaterialController) ListMaterials(c *gin.Context) {
	f := db.MaterialFilter{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		State:    c.Query("state"),
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Size, _ = strconv.Atoi(c.DefaultQuery("size", "50"))

	rows, err := mc.Repo.ListMaterials(c.Request.Context(), f)
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// 详情 + 实时可借数
func (mc *MaterialController) GetMaterial(c *gin.Context) {
	id := c.Param("id")
	m, err := mc.Repo.FindMaterialByID(c.Request.Context(), id)
	if err != nil {
		mc.fail(c, err)
		return
	}
	loaned, err := mc.Repo.LoanedQuantity(c.Request.Context(), id)
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"material":     m,
		"loanedQty":    loaned,
		"availableQty": rules.AvailableQuantity(m.TotalQty, loaned),
	})
}

func (mc *MaterialController) UpdateMaterial(c *gin.Context) {
	var in struct {
		Name      *string `json:"name"`
		Category  *string `json:"category"`
		Unit      *string `json:"unit"`
		Location  *string `json:"location"`
		ManagerID *string `json:"managerId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	m, err := mc.Repo.UpdateMaterial(c.Request.Context(), c.Param("id"), db.UpdateMaterialInput{
		Name: in.Name, Category: in.Category, Unit: in.Unit,
		Location: in.Location, ManagerID: in.ManagerID,
	})
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// 状态调整（maintenance/retired/lost/available），删除走 retired
func (mc *MaterialController) SetState(c *gin.Context) {
	var in struct {
		State models.MaterialState `json:"state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	m, err := mc.Repo.SetMaterialState(c.Request.Context(), c.Param("id"), in.State)
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// 账面总量调整（入库为正，丢失核销为负），写审计记录
func (mc *MaterialController) AdjustQuantity(c *gin.Context) {
	var in struct {
		Delta  int    `json:"delta" binding:"required"`
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "delta and reason are required"})
		return
	}
	actorID, actorName, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	adj, err := mc.Repo.AdjustQuantity(c.Request.Context(), c.Param("id"), in.Delta, actorID, actorName, in.Reason)
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "adjustment": adj})
}

// 审计记录列表 ?materialId=&page=&size=
func (mc *MaterialController) ListAdjustments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	as, err := mc.Repo.ListAdjustments(c.Request.Context(), c.Query("materialId"), page, size)
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": as})
}
