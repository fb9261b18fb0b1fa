// controllers/loan_controller.go
package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/db"
	"Gin_postgres_redis_club_tool/models"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// 借出 POST /api/materials/:id/borrow
func (lc *LoanController) Borrow(c *gin.Context) {
	materialID := c.Param("id")
	uid, _, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}

	var in struct {
		Quantity   int        `json:"quantity" binding:"required,min=1"`
		DueAt      *time.Time `json:"dueAt"`
		ActivityID *string    `json:"activityId"`
		Note       string     `json:"note"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	// 挂活动的借用先确认活动存在
	if in.ActivityID != nil && *in.ActivityID != "" {
		if _, err := lc.Repo.FindActivityByID(c.Request.Context(), *in.ActivityID); err != nil {
			lc.fail(c, err)
			return
		}
	} else {
		in.ActivityID = nil
	}

	// 借用规则来自 MaterialSettings（审批模式、个人上限、默认借期）
	ms, err := lc.Repo.MaterialSettings(c.Request.Context())
	if err != nil {
		lc.fail(c, err)
		return
	}

	loan, err := lc.Repo.CreateLoan(c.Request.Context(), db.CreateLoanInput{
		MaterialID:      materialID,
		BorrowerID:      uid,
		Quantity:        in.Quantity,
		ActivityID:      in.ActivityID,
		DueAt:           in.DueAt,
		Note:            in.Note,
		RequireApproval: ms.RequireApproval,
		MaxOpenLoans:    ms.MaxOpenLoansPerMember,
		DefaultLoanDays: ms.MaxLoanDays,
	})
	if err != nil {
		if err == db.ErrInsufficientStock {
			app.StockRejections.Inc()
		}
		lc.fail(c, err)
		return
	}
	app.LoansCreated.Inc()
	c.JSON(http.StatusCreated, loan)
}

// 审批通过 POST /api/loans/:id/approve（仅管理员，审批模式）
func (lc *LoanController) Approve(c *gin.Context) {
	loan, err := lc.Repo.ApproveLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	_ = lc.Repo.Notify(c.Request.Context(), loan.BorrowerID, models.NotifyLoanApproved,
		"Your loan request has been approved.", "/loans/"+loan.ID, "normal")
	c.JSON(http.StatusOK, loan)
}

// 申报归还 POST /api/loans/:id/pending-return
// 只是声明归还意向，库存继续占用，等实物验收
func (lc *LoanController) PendingReturn(c *gin.Context) {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in)

	loan, err := lc.Repo.MarkPendingReturn(c.Request.Context(), c.Param("id"), in.Reason)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// 验收归还 POST /api/loans/:id/return
func (lc *LoanController) Return(c *gin.Context) {
	var in struct {
		Note string `json:"note"` // 可附事故报告
	}
	_ = c.ShouldBindJSON(&in)

	loan, err := lc.Repo.RegisterReturn(c.Request.Context(), c.Param("id"), in.Note)
	if err != nil {
		lc.fail(c, err)
		return
	}
	app.LoansReturned.Inc()

	// 通知材料负责人；带上事故报告（如有）。发不出去不影响归还本身
	if m, err := lc.Repo.FindMaterialByID(c.Request.Context(), loan.MaterialID); err == nil && m.ManagerID != nil {
		msg := fmt.Sprintf("%d x %s returned.", loan.Quantity, m.Name)
		priority := "normal"
		if in.Note != "" {
			msg += " Incident note: " + in.Note
			priority = "high"
		}
		if err := lc.Repo.Notify(c.Request.Context(), *m.ManagerID, models.NotifyLoanReturned, msg, "/loans/"+loan.ID, priority); err != nil {
			lc.Log.Error("return notification failed", "loan", loan.ID, "err", err)
		} else {
			app.NotificationsSent.Inc()
		}
	}
	c.JSON(http.StatusOK, loan)
}

// 登记丢失 POST /api/loans/:id/loss（仅管理员）
// 只改借用状态；账面总量核销要另走材料数量调整，两件事分开
func (lc *LoanController) Loss(c *gin.Context) {
	loan, err := lc.Repo.RegisterLoss(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	app.LoansLost.Inc()
	c.JSON(http.StatusOK, loan)
}

// 撤销待审批申请 DELETE /api/loans/:id/request
func (lc *LoanController) CancelRequest(c *gin.Context) {
	uid, _, isAdmin, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	if err := lc.Repo.CancelPendingLoan(c.Request.Context(), c.Param("id"), uid, isAdmin); err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// 活动收队 POST /api/activities/:id/pending-return
// 批量申报归还；单条不符合条件跳过，不整批失败
func (lc *LoanController) ActivityPendingReturn(c *gin.Context) {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in)

	activityID := c.Param("id")
	if _, err := lc.Repo.FindActivityByID(c.Request.Context(), activityID); err != nil {
		lc.fail(c, err)
		return
	}
	affected, skipped, err := lc.Repo.MarkActivityPendingReturn(c.Request.Context(), activityID, in.Reason)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"affected": affected, "skipped": skipped})
}

// 借还记录（管理员）?status=open|closed|具体状态&userId=&materialId=&activityId=
func (lc *LoanController) ListLoans(c *gin.Context) {
	f := db.LoanFilter{
		BorrowerID: c.Query("userId"),
		MaterialID: c.Query("materialId"),
		ActivityID: c.Query("activityId"),
		Status:     c.Query("status"),
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	ls, err := lc.Repo.ListLoans(c.Request.Context(), f)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

// 普通用户：自己手上未结清的借用
func (lc *LoanController) ListMyOpenLoans(c *gin.Context) {
	uid, _, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	ls, err := lc.Repo.ListMyOpenLoans(c.Request.Context(), uid)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

// 可借量快查 GET /api/materials/:id/availability
func (lc *LoanController) Availability(c *gin.Context) {
	avail, err := lc.Repo.AvailableQuantity(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"availableQty": avail})
}
