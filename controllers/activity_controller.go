// controllers/activity_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/db"
	"Gin_postgres_redis_club_tool/jobs"
	"Gin_postgres_redis_club_tool/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ActivityController struct {
	*Srv
	Job *jobs.StaleJob
}

func NewActivityController(s *Srv, job *jobs.StaleJob) *ActivityController {
	return &ActivityController{Srv: s, Job: job}
}

func (ac *ActivityController) CreateActivity(c *gin.Context) {
	var in struct {
		Name                string    `json:"name" binding:"required"`
		StartAt             time.Time `json:"startAt" binding:"required"`
		EndAt               time.Time `json:"endAt" binding:"required"`
		ResponsibleActivity string    `json:"responsibleActivity"`
		ResponsibleMaterial string    `json:"responsibleMaterial"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !in.EndAt.After(in.StartAt) {
		c.JSON(http.StatusBadRequest, app.H{"error": "endAt must be after startAt"})
		return
	}

	uid, _, _, _ := currentUser(c)
	respAct := in.ResponsibleActivity
	if respAct == "" {
		respAct = uid // 不填就是创建人负责
	}
	a := &models.Activity{
		ID:                  uuid.NewString(),
		Name:                in.Name,
		StartAt:             in.StartAt,
		EndAt:               in.EndAt,
		ResponsibleActivity: respAct,
		ResponsibleMaterial: in.ResponsibleMaterial,
	}
	if err := ac.Repo.CreateActivity(c.Request.Context(), a); err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (ac *ActivityController) ListActivities(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	as, err := ac.Repo.ListActivities(c.Request.Context(), c.Query("status"), page, size)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": as})
}

// 详情 + 挂在该活动下的借用
func (ac *ActivityController) GetActivity(c *gin.Context) {
	id := c.Param("id")
	a, err := ac.Repo.FindActivityByID(c.Request.Context(), id)
	if err != nil {
		ac.fail(c, err)
		return
	}
	loans, err := ac.Repo.ListLoans(c.Request.Context(), db.LoanFilter{ActivityID: id, Size: 100})
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"activity": a, "loans": loans})
}

func (ac *ActivityController) UpdateActivity(c *gin.Context) {
	var in struct {
		Name                *string                `json:"name"`
		StartAt             *time.Time             `json:"startAt"`
		EndAt               *time.Time             `json:"endAt"`
		Status              *models.ActivityStatus `json:"status"`
		ResponsibleActivity *string                `json:"responsibleActivity"`
		ResponsibleMaterial *string                `json:"responsibleMaterial"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	a, err := ac.Repo.UpdateActivity(c.Request.Context(), c.Param("id"), db.UpdateActivityInput{
		Name: in.Name, StartAt: in.StartAt, EndAt: in.EndAt, Status: in.Status,
		ResponsibleActivity: in.ResponsibleActivity, ResponsibleMaterial: in.ResponsibleMaterial,
	})
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ===== stale 检测（仅管理员） =====

// 只看不发 GET /api/admin/stale-activities
func (ac *ActivityController) DetectStale(c *gin.Context) {
	reports, err := ac.Job.Detect(c.Request.Context(), time.Now().UTC())
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": reports})
}

// 手动触发一轮检测+提醒 POST /api/admin/stale-activities/notify
func (ac *ActivityController) NotifyStale(c *gin.Context) {
	notified, failed, err := ac.Job.Run(c.Request.Context(), time.Now().UTC())
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"notified": notified, "failed": failed})
}

// 补登结束 POST /api/activities/:id/finalize
// 检测只提醒不改状态，改状态必须管理员显式确认
func (ac *ActivityController) FinalizeStale(c *gin.Context) {
	a, err := ac.Repo.FinalizeStaleActivity(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
