// Package scheduler runs recurring jobs against Trigger-computed fire
// times, each firing wrapped in a "job" action. It is grounded on the
// teacher's pkg/cron_worker for the observability-adapter style (logging
// through pkg/observability rather than a bespoke logger) and on
// lib/framework/src/schedule.rs in original_source/ for the loop shape:
// an initial delay, a cancellable sleep racing shutdown, and a spawn
// (not await) of each firing so a slow job never delays the next one.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

const initialDelay = 3 * time.Second

type schedule[S any] struct {
	name    string
	trigger Trigger
	job     Job[S]
}

// Scheduler owns a timezone for calendar math (used by DailyTrigger
// schedules registered without an explicit Location) and the list of
// registered schedules.
type Scheduler[S any] struct {
	obs       observability.Observability
	location  *time.Location
	schedules []schedule[S]
}

// New builds a Scheduler. location governs DailyTrigger schedules that
// don't specify their own.
func New[S any](obs observability.Observability, location *time.Location) *Scheduler[S] {
	if location == nil {
		location = time.Local
	}
	return &Scheduler[S]{obs: obs, location: location}
}

// ScheduleFixedRate registers a job firing every interval.
func (s *Scheduler[S]) ScheduleFixedRate(name string, job Job[S], interval time.Duration) {
	s.schedules = append(s.schedules, schedule[S]{
		name:    name,
		trigger: FixedRateTrigger{Interval: interval},
		job:     job,
	})
}

// ScheduleDaily registers a job firing once per calendar day at timeOfDay,
// in the scheduler's timezone.
func (s *Scheduler[S]) ScheduleDaily(name string, job Job[S], timeOfDay time.Time) {
	s.schedules = append(s.schedules, schedule[S]{
		name:    name,
		trigger: DailyTrigger{TimeOfDay: timeOfDay, Location: s.location},
		job:     job,
	})
}

// Schedule registers a job against an arbitrary Trigger, e.g. a CronTrigger.
func (s *Scheduler[S]) Schedule(name string, job Job[S], trigger Trigger) {
	if dt, ok := trigger.(DailyTrigger); ok && dt.Location == nil {
		dt.Location = s.location
		trigger = dt
	}
	s.schedules = append(s.schedules, schedule[S]{name: name, trigger: trigger, job: job})
}

// Start runs every registered schedule's loop until ctx is cancelled or
// shutdown fires, then waits for all in-flight firings to finish. Job
// failures never abort the loop (§4.6 "the scheduler loop itself never
// fails"): every firing is absorbed by actionlog.Enter.
func (s *Scheduler[S]) Start(ctx context.Context, state S, shutdown <-chan struct{}) error {
	var wg, firings sync.WaitGroup
	for _, sched := range s.schedules {
		wg.Add(1)
		go func(sched schedule[S]) {
			defer wg.Done()
			s.run(ctx, state, shutdown, sched, &firings)
		}(sched)
	}
	wg.Wait()
	firings.Wait()
	return nil
}

func (s *Scheduler[S]) run(ctx context.Context, state S, shutdown <-chan struct{}, sched schedule[S], firings *sync.WaitGroup) {
	select {
	case <-time.After(initialDelay):
	case <-shutdown:
		return
	case <-ctx.Done():
		return
	}

	var previous time.Time
	for {
		next := sched.trigger.Next(previous)
		s.obs.Logger().Info(ctx, fmt.Sprintf("scheduled %s", sched.name),
			observability.String("job", sched.name),
			observability.String("scheduled_time", next.Format(time.RFC3339)))

		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}

		select {
		case <-time.After(wait):
		case <-shutdown:
			return
		case <-ctx.Done():
			return
		}

		firings.Add(1)
		go func(next time.Time) {
			defer firings.Done()
			s.fire(ctx, state, sched, next)
		}(next)
		previous = next
	}
}

func (s *Scheduler[S]) fire(ctx context.Context, state S, sched schedule[S], scheduledTime time.Time) {
	refID, _ := actionlog.CurrentID(ctx)
	var ref *string
	if refID != "" {
		ref = &refID
	}

	_ = actionlog.Enter(ctx, s.obs, "job", ref, func(ctx context.Context) error {
		s.obs.Logger().Info(ctx, "context",
			observability.String("job", sched.name),
			observability.String("scheduled_time", scheduledTime.Format(time.RFC3339)))
		return sched.job(ctx, state)
	})
}
