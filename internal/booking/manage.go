package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendazap/agendazap/internal/calendar"
	"github.com/agendazap/agendazap/internal/schedule"
)

// Cancel marks an appointment cancelled and removes its calendar event. The
// row update is authoritative; a failed calendar delete is logged and counted
// but never blocks the cancellation.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) error {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel")
	defer span.End()
	span.SetAttributes(attribute.Int64("agendazap.appointment_id", req.AppointmentID))

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("booking: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	appointmentID, eventID, err := s.resolveActive(ctx, tx, req.AppointmentID, req.EventID, req.ClientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.ObserveOutcome("cancel", "not_found")
		} else {
			s.metrics.ObserveOutcome("cancel", "storage_failed")
		}
		return err
	}

	if eventID != "" {
		if err := s.cal.DeleteEvent(ctx, eventID); err != nil && !errors.Is(err, calendar.ErrEventNotFound) {
			s.logger.Warn("calendar delete failed during cancellation",
				"appointment_id", appointmentID, "event_id", eventID, "error", err)
			s.metrics.ObserveInconsistency("cancel", "stale_event")
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE agendamentos SET status = $1 WHERE id = $2 AND status = $3
	`, StatusCancelled, appointmentID, StatusActive)
	if err != nil {
		s.metrics.ObserveOutcome("cancel", "storage_failed")
		return fmt.Errorf("booking: mark cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		s.metrics.ObserveOutcome("cancel", "not_found")
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		s.metrics.ObserveOutcome("cancel", "storage_failed")
		return fmt.Errorf("booking: commit: %w", err)
	}

	s.metrics.ObserveOutcome("cancel", "confirmed")
	s.logger.Info("appointment cancelled", "appointment_id", appointmentID, "event_id", eventID)
	return nil
}

// Reschedule moves an active appointment to a new time. The old calendar
// event is deleted best-effort, a new one is created, and the row is updated
// with the new event id and time in one transaction.
func (s *Service) Reschedule(ctx context.Context, req RescheduleRequest) (BookResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.reschedule")
	defer span.End()
	span.SetAttributes(attribute.Int64("agendazap.appointment_id", req.AppointmentID))

	when, err := s.parseFuture(req.NewWhen)
	if err != nil {
		s.metrics.ObserveOutcome("reschedule", "validation_failed")
		return BookResult{}, err
	}
	if !schedule.WithinOperatingWindow(when) {
		s.metrics.ObserveOutcome("reschedule", "validation_failed")
		return BookResult{}, &ValidationError{Message: MsgInvalidTime}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return BookResult{}, fmt.Errorf("booking: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		oldEventID string
		clientName string
		services   string
	)
	row := tx.QueryRow(ctx, `
		SELECT a.google_event_id, c.nome, string_agg(s.nome, ', ')
		FROM agendamentos a
		JOIN clientes c ON c.id = a.cliente_id
		JOIN agendamentos_servicos ags ON ags.agendamento_id = a.id
		JOIN servicos s ON s.id = ags.servico_id
		WHERE a.id = $1 AND a.status = $2
		  AND ($3::bigint = 0 OR a.cliente_id = $3)
		GROUP BY a.google_event_id, c.nome
	`, req.AppointmentID, StatusActive, req.ClientID)
	if err := row.Scan(&oldEventID, &clientName, &services); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.ObserveOutcome("reschedule", "not_found")
			return BookResult{}, ErrNotFound
		}
		s.metrics.ObserveOutcome("reschedule", "storage_failed")
		return BookResult{}, fmt.Errorf("booking: load appointment: %w", err)
	}

	if oldEventID != "" {
		if err := s.cal.DeleteEvent(ctx, oldEventID); err != nil && !errors.Is(err, calendar.ErrEventNotFound) {
			s.logger.Warn("calendar delete failed during reschedule",
				"appointment_id", req.AppointmentID, "event_id", oldEventID, "error", err)
			s.metrics.ObserveInconsistency("reschedule", "stale_event")
		}
	}

	summary := fmt.Sprintf("%s - %s", services, clientName)
	description := fmt.Sprintf("Cliente: %s\nServiços: %s", clientName, services)
	newEventID, err := s.cal.CreateEvent(ctx, summary, description, when, when.Add(EventDuration))
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOutcome("reschedule", "upstream_failed")
		return BookResult{}, fmt.Errorf("booking: create calendar event: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE agendamentos SET google_event_id = $1, horario = $2 WHERE id = $3 AND status = $4
	`, newEventID, when, req.AppointmentID, StatusActive)
	if err != nil {
		s.metrics.ObserveInconsistency("reschedule", "orphan_event")
		s.metrics.ObserveOutcome("reschedule", "storage_failed")
		return BookResult{}, fmt.Errorf("booking: update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		s.metrics.ObserveInconsistency("reschedule", "orphan_event")
		s.metrics.ObserveOutcome("reschedule", "not_found")
		return BookResult{}, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		s.metrics.ObserveInconsistency("reschedule", "orphan_event")
		s.metrics.ObserveOutcome("reschedule", "storage_failed")
		return BookResult{}, fmt.Errorf("booking: commit: %w", err)
	}

	s.metrics.ObserveOutcome("reschedule", "confirmed")
	s.logger.Info("appointment rescheduled",
		"appointment_id", req.AppointmentID,
		"old_event_id", oldEventID,
		"new_event_id", newEventID,
		"when", req.NewWhen,
	)
	return BookResult{AppointmentID: req.AppointmentID, EventID: newEventID}, nil
}

// ListActive returns a client's active appointments ordered by time, each
// with its comma-joined service names.
func (s *Service) ListActive(ctx context.Context, clientID int64) ([]ActiveAppointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.list_active")
	defer span.End()
	span.SetAttributes(attribute.Int64("agendazap.client_id", clientID))

	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.google_event_id, a.horario, string_agg(s.nome, ', ')
		FROM agendamentos a
		JOIN agendamentos_servicos ags ON ags.agendamento_id = a.id
		JOIN servicos s ON s.id = ags.servico_id
		WHERE a.cliente_id = $1 AND a.status = $2
		GROUP BY a.id, a.google_event_id, a.horario
		ORDER BY a.horario ASC
	`, clientID, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("booking: list active: %w", err)
	}
	defer rows.Close()

	var out []ActiveAppointment
	for rows.Next() {
		var a ActiveAppointment
		if err := rows.Scan(&a.ID, &a.EventID, &a.When, &a.Services); err != nil {
			return nil, fmt.Errorf("booking: scan appointment: %w", err)
		}
		a.When = a.When.In(s.tz)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: read appointments: %w", err)
	}
	return out, nil
}

// resolveActive locates the target active row by id or, failing that, by
// calendar event id. An optional client id scopes ownership.
func (s *Service) resolveActive(ctx context.Context, tx pgx.Tx, appointmentID int64, eventID string, clientID int64) (int64, string, error) {
	query := `
		SELECT id, google_event_id FROM agendamentos
		WHERE status = $1 AND ($2::bigint = 0 OR cliente_id = $2)
	`
	var row pgx.Row
	switch {
	case appointmentID > 0:
		row = tx.QueryRow(ctx, query+` AND id = $3`, StatusActive, clientID, appointmentID)
	case strings.TrimSpace(eventID) != "":
		row = tx.QueryRow(ctx, query+` AND google_event_id = $3`, StatusActive, clientID, eventID)
	default:
		return 0, "", ErrNotFound
	}

	var id int64
	var storedEventID string
	if err := row.Scan(&id, &storedEventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", fmt.Errorf("booking: resolve appointment: %w", err)
	}
	return id, storedEventID, nil
}
