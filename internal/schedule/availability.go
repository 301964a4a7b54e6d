package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendazap/agendazap/internal/calendar"
	"github.com/agendazap/agendazap/pkg/logging"
)

var scheduleTracer = otel.Tracer("agendazap.internal.schedule")

// Operating window: Monday through Saturday, 09:00 to 18:00.
const (
	OpeningHour   = 9
	ClosingHour   = 18
	ClosedWeekday = time.Sunday
)

// DateLayout is the wire format for calendar dates across the dialogue.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for slot times.
const TimeLayout = "15:04"

// ErrInvalidDate is returned when the input does not parse to a calendar date.
var ErrInvalidDate = errors.New("schedule: invalid date")

// DB is the subset of pgxpool.Pool the engine needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Slot is one bookable time, flattened for nearest-match suggestions.
type Slot struct {
	Date     string
	Time     string
	DateTime time.Time
}

// DayWindow is an ordered set of days with their open times.
type DayWindow struct {
	Dates []string
	Times map[string][]string
}

// Engine computes free appointment slots by merging the slot table with the
// external calendar's busy intervals.
type Engine struct {
	db     DB
	cal    calendar.Service
	tz     *time.Location
	now    func() time.Time
	logger *logging.Logger
}

// NewEngine builds an availability engine in the given timezone.
func NewEngine(db DB, cal calendar.Service, tz *time.Location, logger *logging.Logger) *Engine {
	if db == nil {
		panic("schedule: db required")
	}
	if cal == nil {
		panic("schedule: calendar service required")
	}
	if tz == nil {
		tz = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{db: db, cal: cal, tz: tz, now: time.Now, logger: logger}
}

// WithClock overrides the clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// AvailableSlots returns the open HH:MM times for a date, ascending. Times
// occupied on the external calendar are removed, Sundays are always empty,
// and when the date is today everything at or before now is dropped.
func (e *Engine) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.available_slots")
	defer span.End()
	span.SetAttributes(attribute.String("agendazap.date", date))

	day, err := time.ParseInLocation(DateLayout, date, e.tz)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if day.Weekday() == ClosedWeekday {
		return []string{}, nil
	}

	startOfDay := day
	endOfDay := day.AddDate(0, 0, 1)

	rows, err := e.db.Query(ctx, `
		SELECT dia_horario FROM horarios_disponiveis
		WHERE dia_horario >= $1 AND dia_horario < $2 AND disponivel = TRUE
		ORDER BY dia_horario ASC
	`, startOfDay, endOfDay)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("schedule: query slots: %w", err)
	}
	defer rows.Close()

	var open []string
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("schedule: scan slot: %w", err)
		}
		open = append(open, ts.In(e.tz).Format(TimeLayout))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: read slots: %w", err)
	}

	busy, err := e.cal.ListBusy(ctx, startOfDay, endOfDay)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("schedule: list busy: %w", err)
	}
	occupied := make(map[string]struct{}, len(busy))
	for _, b := range busy {
		occupied[b.Start.In(e.tz).Format(TimeLayout)] = struct{}{}
	}

	available := make([]string, 0, len(open))
	nowInTZ := e.now().In(e.tz)
	isToday := nowInTZ.Format(DateLayout) == date
	cutoff := nowInTZ.Format(TimeLayout)
	for _, h := range open {
		if _, taken := occupied[h]; taken {
			continue
		}
		if isToday && h <= cutoff {
			continue
		}
		available = append(available, h)
	}
	return available, nil
}

// AvailableDaysWindow enumerates the next `days` working days starting today
// and maps each date with open times to its ascending time list. Days without
// any open time are skipped; Sundays do not count toward the window.
func (e *Engine) AvailableDaysWindow(ctx context.Context, days int) (DayWindow, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.days_window")
	defer span.End()

	window := DayWindow{Times: make(map[string][]string)}
	today := e.startOfToday()

	counted := 0
	for offset := 0; counted < days; offset++ {
		day := today.AddDate(0, 0, offset)
		if day.Weekday() == ClosedWeekday {
			continue
		}
		counted++

		date := day.Format(DateLayout)
		times, err := e.AvailableSlots(ctx, date)
		if err != nil {
			span.RecordError(err)
			return DayWindow{}, err
		}
		if len(times) == 0 {
			continue
		}
		window.Dates = append(window.Dates, date)
		window.Times[date] = times
	}
	return window, nil
}

// AllSlots flattens the window into datetime-ordered slots, used to compute
// the "nearest available" suggestion on invalid choices.
func (e *Engine) AllSlots(ctx context.Context, days int) ([]Slot, error) {
	window, err := e.AvailableDaysWindow(ctx, days)
	if err != nil {
		return nil, err
	}
	var slots []Slot
	for _, date := range window.Dates {
		for _, h := range window.Times[date] {
			dt, err := time.ParseInLocation(DateLayout+"T"+TimeLayout, date+"T"+h, e.tz)
			if err != nil {
				continue
			}
			slots = append(slots, Slot{Date: date, Time: h, DateTime: dt})
		}
	}
	return slots, nil
}

// NearestSlot picks the slot with the smallest absolute offset from the
// requested instant. Returns nil when the list is empty.
func NearestSlot(requested time.Time, slots []Slot) *Slot {
	var best *Slot
	var bestDiff time.Duration
	for i := range slots {
		diff := requested.Sub(slots[i].DateTime)
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best = &slots[i]
			bestDiff = diff
		}
	}
	return best
}

// WithinOperatingWindow reports whether an instant falls on a working day
// inside opening hours.
func WithinOperatingWindow(t time.Time) bool {
	return t.Weekday() != ClosedWeekday && t.Hour() >= OpeningHour && t.Hour() < ClosingHour
}

func (e *Engine) startOfToday() time.Time {
	now := e.now().In(e.tz)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.tz)
}

// Timezone exposes the engine's location so callers format consistently.
func (e *Engine) Timezone() *time.Location {
	return e.tz
}
