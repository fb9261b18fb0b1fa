package rules

import (
	"testing"

	"Gin_postgres_redis_club_tool/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.LoanState
		want     bool
	}{
		{models.LoanPending, models.LoanActive, true},
		{models.LoanActive, models.LoanPendingReturn, true},
		{models.LoanActive, models.LoanReturned, true},
		{models.LoanActive, models.LoanLost, true},
		{models.LoanPendingReturn, models.LoanReturned, true},
		{models.LoanPendingReturn, models.LoanLost, true},

		// 不允许跳级
		{models.LoanPending, models.LoanReturned, false},
		{models.LoanPending, models.LoanPendingReturn, false},
		{models.LoanPending, models.LoanLost, false},
		// 终态不再变更
		{models.LoanReturned, models.LoanActive, false},
		{models.LoanReturned, models.LoanLost, false},
		{models.LoanLost, models.LoanReturned, false},
		{models.LoanLost, models.LoanActive, false},
		// 不能回退
		{models.LoanPendingReturn, models.LoanActive, false},
		{models.LoanActive, models.LoanPending, false},
		// 自环也不合法
		{models.LoanActive, models.LoanActive, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestLoanStateOpen(t *testing.T) {
	open := []models.LoanState{models.LoanPending, models.LoanActive, models.LoanPendingReturn}
	for _, s := range open {
		if !s.Open() {
			t.Errorf("%s should be open", s)
		}
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []models.LoanState{models.LoanReturned, models.LoanLost} {
		if s.Open() {
			t.Errorf("%s should not be open", s)
		}
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
