// controllers/export_controller.go
package controllers

import (
	"fmt"
	"net/http"
	"time"

	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/db"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type ExportController struct{ *Srv }

func NewExportController(s *Srv) *ExportController { return &ExportController{Srv: s} }

// GET /api/admin/export 盘点用 XLSX：库存一张表 + 未结清借用一张表
func (ec *ExportController) ExportInventory(c *gin.Context) {
	ctx := c.Request.Context()

	rows, err := ec.Repo.ListMaterials(ctx, db.MaterialFilter{Size: 200})
	if err != nil {
		ec.fail(c, err)
		return
	}
	loans, err := ec.Repo.ListLoans(ctx, db.LoanFilter{Status: "open", Size: 100})
	if err != nil {
		ec.fail(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const invSheet = "Inventory"
	f.SetSheetName("Sheet1", invSheet)
	invHeaders := []string{"ID", "Name", "Category", "Unit", "State", "Total", "Loaned", "Available", "Location"}
	for i, h := range invHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(invSheet, cell, h)
	}
	for r, m := range rows {
		vals := []any{m.ID, m.Name, m.Category, m.Unit, string(m.State), m.TotalQty, m.LoanedQty, m.AvailableQty, m.Location}
		for i, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(invSheet, cell, v)
		}
	}

	const loanSheet = "Open Loans"
	f.NewSheet(loanSheet)
	loanHeaders := []string{"ID", "Material", "Borrower", "Qty", "State", "Borrowed", "Due", "Activity", "Note"}
	for i, h := range loanHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(loanSheet, cell, h)
	}
	for r, l := range loans {
		due := ""
		if l.DueAt != nil {
			due = l.DueAt.Format("2006-01-02")
		}
		activity := ""
		if l.ActivityID != nil {
			activity = *l.ActivityID
		}
		vals := []any{l.ID, l.MaterialID, l.BorrowerID, l.Quantity, string(l.State),
			l.BorrowedAt.Format("2006-01-02"), due, activity, l.Note}
		for i, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(loanSheet, cell, v)
		}
	}

	name := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		ec.Log.Error("xlsx export failed", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "export failed"})
	}
}
