// rules/ledger.go
// Quantity Ledger 的算术部分。线上走 SQL SUM（db.Repo.LoanedQuantity），
// 这里的内存版本给检测任务和测试复用，两边口径必须一致：
// 占用 = pending + active + pending_return 的数量之和
package rules

import "Gin_postgres_redis_club_tool/models"

// LoanedQuantity 某材料当前被占用的件数
func LoanedQuantity(loans []models.Loan, materialID string) int {
	total := 0
	for _, l := range loans {
		if l.MaterialID == materialID && l.State.Open() {
			total += l.Quantity
		}
	}
	return total
}

// AvailableQuantity 可借件数 = 总量 - 占用，不足时钳到 0，对外不报负库存
func AvailableQuantity(totalQty, loanedQty int) int {
	if a := totalQty - loanedQty; a > 0 {
		return a
	}
	return 0
}
