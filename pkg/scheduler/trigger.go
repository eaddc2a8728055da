package scheduler

import "time"

// Trigger computes the next fire time from the previous one (§4.6). previous
// is the zero Time on the very first call.
type Trigger interface {
	Next(previous time.Time) time.Time
}

// FixedRateTrigger fires every Interval, measured from the previous fire
// time (or now, on the first call).
type FixedRateTrigger struct {
	Interval time.Duration
}

func (t FixedRateTrigger) Next(previous time.Time) time.Time {
	if previous.IsZero() {
		return time.Now().Add(t.Interval)
	}
	return previous.Add(t.Interval)
}

// DailyTrigger fires at TimeOfDay (hour/minute/second are read from it; the
// date is ignored) in Location, each calendar day. Go's time.Date already
// normalizes any wall-clock time that is ambiguous or skipped by a DST
// transition to a single canonical instant, which is the behavior this
// trigger relies on rather than re-implementing DST disambiguation itself.
type DailyTrigger struct {
	TimeOfDay time.Time
	Location  *time.Location
}

func (t DailyTrigger) Next(previous time.Time) time.Time {
	loc := t.Location
	if loc == nil {
		loc = time.Local
	}

	now := time.Now().In(loc)
	base := now
	if !previous.IsZero() {
		base = previous.In(loc).AddDate(0, 0, 1)
	}

	candidate := time.Date(base.Year(), base.Month(), base.Day(),
		t.TimeOfDay.Hour(), t.TimeOfDay.Minute(), t.TimeOfDay.Second(), 0, loc)

	if previous.IsZero() && !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
