package rules

import (
	"testing"

	"Gin_postgres_redis_club_tool/models"
)

func loan(material string, qty int, state models.LoanState) models.Loan {
	return models.Loan{MaterialID: material, Quantity: qty, State: state}
}

func TestLoanedQuantity(t *testing.T) {
	loans := []models.Loan{
		loan("rope", 1, models.LoanActive),
		loan("rope", 2, models.LoanPending),
		loan("rope", 3, models.LoanPendingReturn), // 申报归还仍占用
		loan("rope", 4, models.LoanReturned),      // 已归还不计
		loan("rope", 5, models.LoanLost),          // 丢失不计（总量另行核销）
		loan("helmet", 7, models.LoanActive),      // 别的材料不计
	}
	if got := LoanedQuantity(loans, "rope"); got != 6 {
		t.Fatalf("LoanedQuantity = %d, want 6", got)
	}
	if got := LoanedQuantity(loans, "helmet"); got != 7 {
		t.Fatalf("LoanedQuantity(helmet) = %d, want 7", got)
	}
	if got := LoanedQuantity(nil, "rope"); got != 0 {
		t.Fatalf("LoanedQuantity(empty) = %d, want 0", got)
	}
}

func TestAvailableQuantity(t *testing.T) {
	cases := []struct{ total, loaned, want int }{
		{10, 7, 3},
		{10, 10, 0},
		{1, 0, 1},
		{1, 1, 0},
		{0, 0, 0},
		{3, 5, 0}, // 账目异常时钳到 0，不对外报负数
	}
	for _, c := range cases {
		if got := AvailableQuantity(c.total, c.loaned); got != c.want {
			t.Errorf("AvailableQuantity(%d, %d) = %d, want %d", c.total, c.loaned, got, c.want)
		}
	}
}

// 单件材料（绳子总量 1）：借出→再借失败→归还→可再借
func TestSingleItemScenario(t *testing.T) {
	const total = 1
	var loans []models.Loan

	avail := AvailableQuantity(total, LoanedQuantity(loans, "ropeA"))
	if avail != 1 {
		t.Fatalf("initial available = %d, want 1", avail)
	}

	// borrower1 借走
	loans = append(loans, loan("ropeA", 1, models.LoanActive))
	avail = AvailableQuantity(total, LoanedQuantity(loans, "ropeA"))
	if avail != 0 {
		t.Fatalf("after first borrow available = %d, want 0", avail)
	}
	// borrower2 的请求必须被拒
	if avail >= 1 {
		t.Fatal("second borrow should have been rejected")
	}

	// 归还后恢复
	loans[0].State = models.LoanReturned
	avail = AvailableQuantity(total, LoanedQuantity(loans, "ropeA"))
	if avail != 1 {
		t.Fatalf("after return available = %d, want 1", avail)
	}
}

// 头盔总量 10：借 3 + 借 4 → 可借 3；再借 4 拒绝；借 3 成功 → 可借 0
func TestQuantityScenario(t *testing.T) {
	const total = 10
	loans := []models.Loan{
		loan("helmets", 3, models.LoanActive),
		loan("helmets", 4, models.LoanActive),
	}
	avail := AvailableQuantity(total, LoanedQuantity(loans, "helmets"))
	if avail != 3 {
		t.Fatalf("available = %d, want 3", avail)
	}
	if 4 <= avail {
		t.Fatal("borrowing 4 more should be rejected")
	}
	loans = append(loans, loan("helmets", 3, models.LoanActive))
	avail = AvailableQuantity(total, LoanedQuantity(loans, "helmets"))
	if avail != 0 {
		t.Fatalf("available = %d, want 0", avail)
	}
}

// 不变量：不含 lost 的任意 create/return 序列后 available = total - loaned
func TestLedgerInvariantOverSequence(t *testing.T) {
	const total = 8
	var loans []models.Loan
	steps := []struct {
		borrow int  // >0 借出该数量，0 表示归还最早的未还记录
		ok     bool // 借出是否应被接受
	}{
		{3, true}, {4, true}, {2, false}, {1, true}, {0, true}, {4, true}, {0, true}, {0, true},
	}
	for i, st := range steps {
		loaned := LoanedQuantity(loans, "m")
		avail := AvailableQuantity(total, loaned)
		if st.borrow > 0 {
			accepted := st.borrow <= avail
			if accepted != st.ok {
				t.Fatalf("step %d: accepted = %v, want %v (avail %d)", i, accepted, st.ok, avail)
			}
			if accepted {
				loans = append(loans, loan("m", st.borrow, models.LoanActive))
			}
		} else {
			for j := range loans {
				if loans[j].State.Open() {
					loans[j].State = models.LoanReturned
					break
				}
			}
		}
		loaned = LoanedQuantity(loans, "m")
		if got := AvailableQuantity(total, loaned); got != total-loaned {
			t.Fatalf("step %d: invariant broken: available %d != total %d - loaned %d", i, got, total, loaned)
		}
	}
}
