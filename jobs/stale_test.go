package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"Gin_postgres_redis_club_tool/models"
)

type fakeSource struct {
	activities  []models.Activity
	outstanding map[string]int64
	countErr    map[string]error
}

func (f *fakeSource) StaleActivities(_ context.Context, now time.Time) ([]models.Activity, error) {
	var out []models.Activity
	for _, a := range f.activities {
		if a.Status == models.ActivityInProgress && a.EndAt.Before(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSource) CountOutstandingLoans(_ context.Context, id string) (int64, error) {
	if err := f.countErr[id]; err != nil {
		return 0, err
	}
	return f.outstanding[id], nil
}

type sentNote struct{ userID, kind, message string }

type fakeSink struct {
	sent    []sentNote
	failFor map[string]error // userID → error
}

func (f *fakeSink) Notify(_ context.Context, userID, kind, message, _, _ string) error {
	if err := f.failFor[userID]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentNote{userID, kind, message})
	return nil
}

func testJob(src Source, sink Notifier) *StaleJob {
	return &StaleJob{Source: src, Sink: sink, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// 场景：昨天结束、还挂着 in_progress、两条未归还借用、两个责任人 →
// 检出 daysOverdue=1，恰好发两条通知
func TestStaleRunCaveTrip(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		activities: []models.Activity{
			{
				ID: "cave", Name: "Cave Trip", Status: models.ActivityInProgress,
				EndAt:               now.Add(-24 * time.Hour),
				ResponsibleActivity: "user-a", ResponsibleMaterial: "user-b",
			},
			// 还没结束的绝不检出
			{
				ID: "hike", Name: "Hike", Status: models.ActivityInProgress,
				EndAt:               now.Add(24 * time.Hour),
				ResponsibleActivity: "user-c",
			},
		},
		outstanding: map[string]int64{"cave": 2},
	}
	sink := &fakeSink{}
	job := testJob(src, sink)

	reports, err := job.Detect(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("want 1 stale activity, got %d", len(reports))
	}
	if reports[0].DaysOverdue != 1 || reports[0].OutstandingLoans != 2 {
		t.Fatalf("report = %+v, want daysOverdue 1, outstanding 2", reports[0])
	}

	notified, failed, err := job.Run(context.Background(), now)
	if err != nil || failed != 0 {
		t.Fatalf("run: notified=%d failed=%d err=%v", notified, failed, err)
	}
	if notified != 2 || len(sink.sent) != 2 {
		t.Fatalf("want exactly 2 notifications, got %d", len(sink.sent))
	}
	if sink.sent[0].userID != "user-a" || sink.sent[1].userID != "user-b" {
		t.Fatalf("recipients = %v", sink.sent)
	}
	for _, n := range sink.sent {
		if n.kind != models.NotifyStaleActivity {
			t.Errorf("kind = %q", n.kind)
		}
	}
}

// 同一人身兼两职只收一条
func TestStaleRunDedupsRecipients(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{
		activities: []models.Activity{{
			ID: "a1", Name: "Solo", Status: models.ActivityInProgress,
			EndAt:               now.Add(-48 * time.Hour),
			ResponsibleActivity: "user-a", ResponsibleMaterial: "user-a",
		}},
		outstanding: map[string]int64{"a1": 1},
	}
	sink := &fakeSink{}
	notified, _, err := testJob(src, sink).Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if notified != 1 || len(sink.sent) != 1 {
		t.Fatalf("want 1 notification, got %d", len(sink.sent))
	}
}

// 给一个人发失败不影响另一个人
func TestStaleRunIsolatesFailures(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{
		activities: []models.Activity{{
			ID: "a1", Name: "Trip", Status: models.ActivityInProgress,
			EndAt:               now.Add(-30 * time.Hour),
			ResponsibleActivity: "user-a", ResponsibleMaterial: "user-b",
		}},
		outstanding: map[string]int64{"a1": 3},
	}
	sink := &fakeSink{failFor: map[string]error{"user-a": errors.New("sink down")}}
	notified, failed, err := testJob(src, sink).Run(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if failed != 1 || notified != 1 {
		t.Fatalf("notified=%d failed=%d, want 1/1", notified, failed)
	}
	if len(sink.sent) != 1 || sink.sent[0].userID != "user-b" {
		t.Fatalf("sent = %v, want only user-b", sink.sent)
	}
}

// 单个活动的借用数查不出来：跳过该活动，别的照常
func TestStaleDetectSkipsBrokenActivity(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{
		activities: []models.Activity{
			{ID: "bad", Name: "Bad", Status: models.ActivityInProgress, EndAt: now.Add(-25 * time.Hour), ResponsibleActivity: "x"},
			{ID: "good", Name: "Good", Status: models.ActivityInProgress, EndAt: now.Add(-26 * time.Hour), ResponsibleActivity: "y"},
		},
		outstanding: map[string]int64{"good": 1},
		countErr:    map[string]error{"bad": errors.New("query timeout")},
	}
	reports, err := testJob(src, &fakeSink{}).Detect(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].Activity.ID != "good" {
		t.Fatalf("reports = %+v, want only 'good'", reports)
	}
}

// 重复跑不做抑制：两轮 → 两倍通知
func TestStaleRunRepeatsNotify(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{
		activities: []models.Activity{{
			ID: "a1", Name: "Trip", Status: models.ActivityInProgress,
			EndAt:               now.Add(-30 * time.Hour),
			ResponsibleActivity: "user-a",
		}},
		outstanding: map[string]int64{"a1": 1},
	}
	sink := &fakeSink{}
	job := testJob(src, sink)
	for i := 0; i < 2; i++ {
		if _, _, err := job.Run(context.Background(), now); err != nil {
			t.Fatal(err)
		}
	}
	if len(sink.sent) != 2 {
		t.Fatalf("want 2 notifications after 2 runs, got %d", len(sink.sent))
	}
}
