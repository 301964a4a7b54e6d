package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestCancelByID(t *testing.T) {
	cal := &fakeCalendar{}
	svc, mock := newTestService(t, cal)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, google_event_id FROM agendamentos").
		WithArgs(StatusActive, int64(3), int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "google_event_id"}).AddRow(int64(7), "evt_9"))
	mock.ExpectExec("UPDATE agendamentos SET status").
		WithArgs(StatusCancelled, int64(7), StatusActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if err := svc.Cancel(context.Background(), CancelRequest{AppointmentID: 7, ClientID: 3}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(cal.deleted) != 1 || cal.deleted[0] != "evt_9" {
		t.Fatalf("expected calendar delete of evt_9, got %v", cal.deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelByEventID(t *testing.T) {
	cal := &fakeCalendar{}
	svc, mock := newTestService(t, cal)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, google_event_id FROM agendamentos").
		WithArgs(StatusActive, int64(0), "evt_9").
		WillReturnRows(pgxmock.NewRows([]string{"id", "google_event_id"}).AddRow(int64(7), "evt_9"))
	mock.ExpectExec("UPDATE agendamentos SET status").
		WithArgs(StatusCancelled, int64(7), StatusActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if err := svc.Cancel(context.Background(), CancelRequest{EventID: "evt_9"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelNotFound(t *testing.T) {
	cal := &fakeCalendar{}
	svc, mock := newTestService(t, cal)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, google_event_id FROM agendamentos").
		WithArgs(StatusActive, int64(0), int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "google_event_id"}))
	mock.ExpectRollback()

	err := svc.Cancel(context.Background(), CancelRequest{AppointmentID: 99})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(cal.deleted) != 0 {
		t.Fatal("no calendar delete expected for an unknown appointment")
	}
}

func TestCancelSurvivesCalendarFailure(t *testing.T) {
	cal := &fakeCalendar{deleteErr: errors.New("calendar down")}
	svc, mock := newTestService(t, cal)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, google_event_id FROM agendamentos").
		WithArgs(StatusActive, int64(0), int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "google_event_id"}).AddRow(int64(7), "evt_9"))
	mock.ExpectExec("UPDATE agendamentos SET status").
		WithArgs(StatusCancelled, int64(7), StatusActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if err := svc.Cancel(context.Background(), CancelRequest{AppointmentID: 7}); err != nil {
		t.Fatalf("cancellation must not depend on the calendar: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReschedule(t *testing.T) {
	cal := &fakeCalendar{createID: "evt_new"}
	svc, mock := newTestService(t, cal)

	newWhen := time.Date(2026, 6, 22, 15, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT a.google_event_id, c.nome").
		WithArgs(int64(7), StatusActive, int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"google_event_id", "nome", "string_agg"}).
			AddRow("evt_old", "Maria", "Corte, Barba"))
	mock.ExpectExec("UPDATE agendamentos SET google_event_id").
		WithArgs("evt_new", newWhen, int64(7), StatusActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	result, err := svc.Reschedule(context.Background(), RescheduleRequest{
		AppointmentID: 7,
		ClientID:      3,
		NewWhen:       "2026-06-22T15:00:00",
	})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if result.EventID != "evt_new" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(cal.deleted) != 1 || cal.deleted[0] != "evt_old" {
		t.Fatalf("expected old event deleted, got %v", cal.deleted)
	}
	if len(cal.created) != 1 || cal.created[0] != "Corte, Barba - Maria" {
		t.Fatalf("unexpected new event summaries: %v", cal.created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRescheduleNotFound(t *testing.T) {
	cal := &fakeCalendar{createID: "evt_new"}
	svc, mock := newTestService(t, cal)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT a.google_event_id, c.nome").
		WithArgs(int64(7), StatusActive, int64(0)).
		WillReturnRows(pgxmock.NewRows([]string{"google_event_id", "nome", "string_agg"}))
	mock.ExpectRollback()

	_, err := svc.Reschedule(context.Background(), RescheduleRequest{
		AppointmentID: 7,
		NewWhen:       "2026-06-22T15:00:00",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(cal.created) != 0 {
		t.Fatal("no event should be created for an unknown appointment")
	}
}

func TestReschedulePastTimeRejected(t *testing.T) {
	cal := &fakeCalendar{}
	svc, _ := newTestService(t, cal)

	_, err := svc.Reschedule(context.Background(), RescheduleRequest{
		AppointmentID: 7,
		NewWhen:       "2026-06-18T15:00:00",
	})
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListActive(t *testing.T) {
	cal := &fakeCalendar{}
	svc, mock := newTestService(t, cal)

	first := time.Date(2026, 6, 20, 14, 30, 0, 0, time.UTC)
	second := time.Date(2026, 6, 25, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT a.id, a.google_event_id, a.horario").
		WithArgs(int64(3), StatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"id", "google_event_id", "horario", "string_agg"}).
			AddRow(int64(7), "evt_a", first, "Corte").
			AddRow(int64(8), "evt_b", second, "Corte + Barba"))

	appointments, err := svc.ListActive(context.Background(), 3)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(appointments) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appointments))
	}
	if appointments[0].ID != 7 || appointments[0].Services != "Corte" {
		t.Fatalf("unexpected first appointment: %+v", appointments[0])
	}
	if !appointments[1].When.Equal(second) {
		t.Fatalf("unexpected second time: %v", appointments[1].When)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
