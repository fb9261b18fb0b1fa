// rules/stale.go
// 过期活动判定：状态还是 in_progress 但结束时间已经过去
package rules

import (
	"time"

	"Gin_postgres_redis_club_tool/models"
)

// IsStale 结束时间严格早于 now 才算过期；EndAt >= now 一律不算，状态再乱也不算
func IsStale(a models.Activity, now time.Time) bool {
	return a.Status == models.ActivityInProgress && a.EndAt.Before(now)
}

// DaysOverdue 逾期整天数，不足一天算 0
func DaysOverdue(endAt, now time.Time) int {
	if !endAt.Before(now) {
		return 0
	}
	return int(now.Sub(endAt).Hours() / 24)
}

// StaleRecipients 需要通知的责任人，去重（同一人身兼两职只通知一次），跳过空 ID
func StaleRecipients(a models.Activity) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range []string{a.ResponsibleActivity, a.ResponsibleMaterial} {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
