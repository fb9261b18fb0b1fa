package rules

import (
	"testing"
	"time"

	"Gin_postgres_redis_club_tool/models"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	mk := func(status models.ActivityStatus, end time.Time) models.Activity {
		return models.Activity{Status: status, EndAt: end}
	}
	cases := []struct {
		name string
		a    models.Activity
		want bool
	}{
		{"in progress, ended yesterday", mk(models.ActivityInProgress, now.Add(-24*time.Hour)), true},
		{"in progress, ended a minute ago", mk(models.ActivityInProgress, now.Add(-time.Minute)), true},
		{"in progress, ends exactly now", mk(models.ActivityInProgress, now), false},
		{"in progress, ends tomorrow", mk(models.ActivityInProgress, now.Add(24*time.Hour)), false},
		// 状态不是 in_progress 的一律不算，结束再久也不算
		{"planned, long past", mk(models.ActivityPlanned, now.Add(-72*time.Hour)), false},
		{"finished, long past", mk(models.ActivityFinished, now.Add(-72*time.Hour)), false},
		{"cancelled, long past", mk(models.ActivityCancelled, now.Add(-72*time.Hour)), false},
	}
	for _, c := range cases {
		if got := IsStale(c.a, now); got != c.want {
			t.Errorf("%s: IsStale = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		end  time.Time
		want int
	}{
		{now.Add(-24 * time.Hour), 1}, // 昨天结束 → 逾期 1 天
		{now.Add(-25 * time.Hour), 1},
		{now.Add(-23 * time.Hour), 0}, // 不足一天算 0
		{now.Add(-49 * time.Hour), 2},
		{now, 0},
		{now.Add(time.Hour), 0}, // 还没结束
	}
	for _, c := range cases {
		if got := DaysOverdue(c.end, now); got != c.want {
			t.Errorf("DaysOverdue(end=%v) = %d, want %d", c.end, got, c.want)
		}
	}
}

func TestStaleRecipients(t *testing.T) {
	a := models.Activity{ResponsibleActivity: "user-a", ResponsibleMaterial: "user-b"}
	if got := StaleRecipients(a); len(got) != 2 || got[0] != "user-a" || got[1] != "user-b" {
		t.Fatalf("recipients = %v, want [user-a user-b]", got)
	}

	// 同一人身兼两职只通知一次
	both := models.Activity{ResponsibleActivity: "user-a", ResponsibleMaterial: "user-a"}
	if got := StaleRecipients(both); len(got) != 1 || got[0] != "user-a" {
		t.Fatalf("recipients = %v, want [user-a]", got)
	}

	// 空 ID 跳过
	half := models.Activity{ResponsibleActivity: "user-a"}
	if got := StaleRecipients(half); len(got) != 1 || got[0] != "user-a" {
		t.Fatalf("recipients = %v, want [user-a]", got)
	}
	if got := StaleRecipients(models.Activity{}); len(got) != 0 {
		t.Fatalf("recipients = %v, want empty", got)
	}
}
