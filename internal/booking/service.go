package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendazap/agendazap/internal/calendar"
	"github.com/agendazap/agendazap/internal/clients"
	"github.com/agendazap/agendazap/internal/observability/metrics"
	"github.com/agendazap/agendazap/internal/schedule"
	"github.com/agendazap/agendazap/pkg/logging"
)

var bookingTracer = otel.Tracer("agendazap.internal.booking")

// DB is the subset of pgxpool.Pool the coordinators need.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service coordinates the relational store and the external calendar for
// booking, cancellation and rescheduling. Calendar writes happen before
// storage writes so failures bias toward orphan calendar events rather than
// orphan rows; the storage row is the authoritative state.
type Service struct {
	db       DB
	cal      calendar.Service
	schedule *schedule.Engine
	tz       *time.Location
	now      func() time.Time
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewService wires the booking coordinator.
func NewService(db DB, cal calendar.Service, sched *schedule.Engine, tz *time.Location, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if db == nil {
		panic("booking: db required")
	}
	if cal == nil {
		panic("booking: calendar service required")
	}
	if sched == nil {
		panic("booking: schedule engine required")
	}
	if tz == nil {
		tz = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		db:       db,
		cal:      cal,
		schedule: sched,
		tz:       tz,
		now:      time.Now,
		metrics:  m,
		logger:   logger,
	}
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Book validates the request, creates the calendar event and persists the
// appointment atomically, consuming the availability slot. The requested
// time is re-checked against freshly computed availability right before the
// write to close the gap between a stale listing and the booking.
func (s *Service) Book(ctx context.Context, req BookRequest) (BookResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()
	span.SetAttributes(attribute.Int64("agendazap.client_id", req.ClientID))

	when, err := s.validateBookRequest(req)
	if err != nil {
		s.metrics.ObserveOutcome("book", "validation_failed")
		return BookResult{}, err
	}

	date := when.Format(schedule.DateLayout)
	hour := when.Format(schedule.TimeLayout)

	available, err := s.schedule.AvailableSlots(ctx, date)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOutcome("book", "upstream_failed")
		return BookResult{}, fmt.Errorf("booking: recompute availability: %w", err)
	}
	if !containsTime(available, hour) {
		s.metrics.ObserveOutcome("book", "slot_unavailable")
		return BookResult{}, &ValidationError{Message: MsgInvalidTime}
	}

	summary := fmt.Sprintf("%s - %s", strings.Join(req.Services, ", "), req.ClientName)
	description := fmt.Sprintf("Cliente: %s\nServiços: %s", req.ClientName, strings.Join(req.Services, ", "))
	eventID, err := s.cal.CreateEvent(ctx, summary, description, when, when.Add(EventDuration))
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOutcome("book", "upstream_failed")
		return BookResult{}, fmt.Errorf("booking: create calendar event: %w", err)
	}

	result, err := s.persistBooking(ctx, req, when, eventID)
	if err != nil {
		// The event created above is deliberately not compensated; the
		// orphan is recorded so operators can reconcile from logs.
		s.logger.Warn("booking rolled back after calendar event creation",
			"event_id", eventID, "client_id", req.ClientID, "error", err)
		s.metrics.ObserveInconsistency("book", "orphan_event")
		if _, ok := AsValidation(err); ok {
			s.metrics.ObserveOutcome("book", "validation_failed")
		} else if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveOutcome("book", "conflict")
		} else {
			s.metrics.ObserveOutcome("book", "storage_failed")
		}
		return BookResult{}, err
	}

	s.metrics.ObserveOutcome("book", "confirmed")
	s.logger.Info("appointment booked",
		"appointment_id", result.AppointmentID,
		"event_id", result.EventID,
		"client_id", req.ClientID,
		"when", req.When,
	)
	return result, nil
}

// persistBooking runs the storage transaction: appointment row, service
// junction rows, conditional slot consumption.
func (s *Service) persistBooking(ctx context.Context, req BookRequest, when time.Time, eventID string) (BookResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return BookResult{}, fmt.Errorf("booking: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var appointmentID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO agendamentos (cliente_id, google_event_id, horario, status, data_agendamento)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`, req.ClientID, eventID, when, StatusActive).Scan(&appointmentID); err != nil {
		return BookResult{}, fmt.Errorf("booking: insert appointment: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, nome FROM servicos WHERE nome = ANY($1)
	`, req.Services)
	if err != nil {
		return BookResult{}, fmt.Errorf("booking: resolve services: %w", err)
	}
	serviceIDs := make([]int64, 0, len(req.Services))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return BookResult{}, fmt.Errorf("booking: scan service: %w", err)
		}
		serviceIDs = append(serviceIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return BookResult{}, fmt.Errorf("booking: read services: %w", err)
	}
	if len(serviceIDs) != len(req.Services) {
		return BookResult{}, &ValidationError{Message: MsgInvalidService}
	}

	for _, serviceID := range serviceIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO agendamentos_servicos (agendamento_id, servico_id) VALUES ($1, $2)
		`, appointmentID, serviceID); err != nil {
			return BookResult{}, fmt.Errorf("booking: insert junction: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE horarios_disponiveis SET disponivel = FALSE
		WHERE dia_horario = $1 AND disponivel = TRUE
	`, when)
	if err != nil {
		return BookResult{}, fmt.Errorf("booking: consume slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return BookResult{}, ErrSlotTaken
	}

	if err := tx.Commit(ctx); err != nil {
		return BookResult{}, fmt.Errorf("booking: commit: %w", err)
	}
	return BookResult{AppointmentID: appointmentID, EventID: eventID}, nil
}

// validateBookRequest is the fail-fast gate; nothing below it has run yet.
func (s *Service) validateBookRequest(req BookRequest) (time.Time, error) {
	if req.ClientID <= 0 {
		return time.Time{}, &ValidationError{Message: MsgInvalidClientID}
	}
	if req.ClientName != "" && !clients.ValidName(req.ClientName) {
		return time.Time{}, &ValidationError{Message: MsgInvalidName}
	}
	if len(req.Services) == 0 {
		return time.Time{}, &ValidationError{Message: MsgInvalidService}
	}
	for _, svc := range req.Services {
		if !ValidService(svc) {
			return time.Time{}, &ValidationError{Message: MsgInvalidService}
		}
	}
	when, err := s.parseFuture(req.When)
	if err != nil {
		return time.Time{}, err
	}
	if !schedule.WithinOperatingWindow(when) {
		return time.Time{}, &ValidationError{Message: MsgInvalidTime}
	}
	return when, nil
}

// parseFuture parses a WhenLayout timestamp in the scheduling timezone and
// requires it to lie in the future.
func (s *Service) parseFuture(when string) (time.Time, error) {
	t, err := time.ParseInLocation(WhenLayout, when, s.tz)
	if err != nil {
		return time.Time{}, &ValidationError{Message: MsgInvalidDateTime}
	}
	if !t.After(s.now().In(s.tz)) {
		return time.Time{}, &ValidationError{Message: MsgInvalidDateTime}
	}
	return t, nil
}

func containsTime(times []string, hour string) bool {
	for _, t := range times {
		if t == hour {
			return true
		}
	}
	return false
}
