// rules/loan.go
// 借用状态机的纯规则部分：只判断转换是否合法，持久化副作用在 db 层
package rules

import "Gin_postgres_redis_club_tool/models"

// 合法转换表
// pending → active → pending_return → returned
// lost 只能从 active / pending_return 进入；不允许跳级
var loanTransitions = map[models.LoanState][]models.LoanState{
	models.LoanPending:       {models.LoanActive},
	models.LoanActive:        {models.LoanPendingReturn, models.LoanReturned, models.LoanLost},
	models.LoanPendingReturn: {models.LoanReturned, models.LoanLost},
	// returned / lost 是终态
}

// CanTransition 借用记录能否从 from 转到 to
func CanTransition(from, to models.LoanState) bool {
	for _, next := range loanTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
