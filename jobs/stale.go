// jobs/stale.go
// 过期活动检测任务：只发现和提醒，不改任何活动/借用状态。
// 补登结束是管理员的显式操作（FinalizeStaleActivity），检测和修正分开。
// 可以定时跑也可以手动触发；重复跑会重复提醒，不做“已提醒”抑制。
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/models"
	"Gin_postgres_redis_club_tool/rules"
)

// Source 检测需要的查询面（db.Repo 实现）
type Source interface {
	StaleActivities(ctx context.Context, now time.Time) ([]models.Activity, error)
	CountOutstandingLoans(ctx context.Context, activityID string) (int64, error)
}

// Notifier 通知落点（db.Repo 实现；测试用 fake）
type Notifier interface {
	Notify(ctx context.Context, userID, kind, message, link, priority string) error
}

type Report struct {
	Activity         models.Activity `json:"activity"`
	DaysOverdue      int             `json:"daysOverdue"`
	OutstandingLoans int64           `json:"outstandingLoans"`
}

type StaleJob struct {
	Source Source
	Sink   Notifier
	Log    *slog.Logger
}

// Detect 列出所有过期活动及其逾期天数、未归还借用数。不发通知
func (j *StaleJob) Detect(ctx context.Context, now time.Time) ([]Report, error) {
	acts, err := j.Source.StaleActivities(ctx, now)
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(acts))
	for _, a := range acts {
		n, err := j.Source.CountOutstandingLoans(ctx, a.ID)
		if err != nil {
			// 单个活动查不出来不拖垮整轮，记日志继续
			j.Log.Error("stale job: count outstanding loans failed", "activity", a.ID, "err", err)
			continue
		}
		reports = append(reports, Report{
			Activity:         a,
			DaysOverdue:      rules.DaysOverdue(a.EndAt, now),
			OutstandingLoans: n,
		})
	}
	return reports, nil
}

// Run 检测并给每个责任人发一条通知（同一人身兼两职只发一条）。
// 单条通知失败只计数，不影响其余
func (j *StaleJob) Run(ctx context.Context, now time.Time) (notified, failed int, err error) {
	reports, err := j.Detect(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	app.StaleActivitiesFound.Add(float64(len(reports)))

	for _, rep := range reports {
		msg := fmt.Sprintf(
			"Activity %q ended %d day(s) ago but is still marked in progress; %d loan(s) outstanding.",
			rep.Activity.Name, rep.DaysOverdue, rep.OutstandingLoans,
		)
		link := "/activities/" + rep.Activity.ID
		for _, uid := range rules.StaleRecipients(rep.Activity) {
			if err := j.Sink.Notify(ctx, uid, models.NotifyStaleActivity, msg, link, "high"); err != nil {
				j.Log.Error("stale job: notify failed", "activity", rep.Activity.ID, "user", uid, "err", err)
				failed++
				continue
			}
			app.NotificationsSent.Inc()
			notified++
		}
	}
	return notified, failed, nil
}

// Start 周期运行直到 ctx 结束。每轮带超时，挂住的一轮不影响下一轮
func (j *StaleJob) Start(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	j.Log.Info("stale activity job started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			j.Log.Info("stale activity job stopped")
			return
		case <-t.C:
			runCtx, cancel := context.WithTimeout(ctx, time.Minute)
			notified, failed, err := j.Run(runCtx, time.Now().UTC())
			cancel()
			if err != nil {
				j.Log.Error("stale job run failed", "err", err)
				continue
			}
			j.Log.Info("stale job run complete", "notified", notified, "failed", failed)
		}
	}
}
