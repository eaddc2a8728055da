package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// CronTrigger wraps robfig/cron/v3's schedule parser, offering cron-string
// schedules alongside FixedRateTrigger/DailyTrigger (§4.6). It implements
// the same Trigger interface; the scheduling loop in Scheduler.Start does
// not distinguish it from the other trigger kinds.
type CronTrigger struct {
	schedule cron.Schedule
}

// NewCronTrigger parses expr with the standard five-field cron parser (the
// one used by teacher's pkg/cron_worker).
func NewCronTrigger(expr string) (CronTrigger, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return CronTrigger{}, fmt.Errorf("scheduler: invalid cron expression %q: %w", expr, err)
	}
	return CronTrigger{schedule: schedule}, nil
}

func (t CronTrigger) Next(previous time.Time) time.Time {
	base := previous
	if base.IsZero() {
		base = time.Now()
	}
	return t.schedule.Next(base)
}
