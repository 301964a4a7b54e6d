package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendazap/agendazap/internal/booking"
	"github.com/agendazap/agendazap/internal/schedule"
)

type stubBooking struct {
	bookResult booking.BookResult
	bookErr    error
	cancelErr  error
	reschedErr error
	active     []booking.ActiveAppointment
	gotBook    booking.BookRequest
	gotCancel  booking.CancelRequest
	gotResched booking.RescheduleRequest
}

func (s *stubBooking) Book(ctx context.Context, req booking.BookRequest) (booking.BookResult, error) {
	s.gotBook = req
	return s.bookResult, s.bookErr
}

func (s *stubBooking) Cancel(ctx context.Context, req booking.CancelRequest) error {
	s.gotCancel = req
	return s.cancelErr
}

func (s *stubBooking) Reschedule(ctx context.Context, req booking.RescheduleRequest) (booking.BookResult, error) {
	s.gotResched = req
	return s.bookResult, s.reschedErr
}

func (s *stubBooking) ListActive(ctx context.Context, clientID int64) ([]booking.ActiveAppointment, error) {
	return s.active, nil
}

type stubSlots struct {
	slots []string
	err   error
}

func (s *stubSlots) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	return s.slots, s.err
}

func appointmentsRouter(svc *stubBooking, slots *stubSlots) http.Handler {
	h := NewAppointmentsHandler(svc, slots, nil)
	r := chi.NewRouter()
	r.Get("/api/agendamentos/horarios", h.Slots)
	r.Get("/api/agendamentos", h.ListActive)
	r.Post("/api/agendamentos", h.Create)
	r.Post("/api/agendamentos/{id}/cancelar", h.Cancel)
	r.Post("/api/agendamentos/{id}/reagendar", h.Reschedule)
	return r
}

func TestSlotsEndpoint(t *testing.T) {
	r := appointmentsRouter(&stubBooking{}, &stubSlots{slots: []string{"09:00", "10:30"}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agendamentos/horarios?data=2026-06-20", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, []any{"09:00", "10:30"}, env.Data)
}

func TestSlotsEndpointRequiresDate(t *testing.T) {
	r := appointmentsRouter(&stubBooking{}, &stubSlots{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agendamentos/horarios", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlotsEndpointInvalidDate(t *testing.T) {
	r := appointmentsRouter(&stubBooking{}, &stubSlots{err: schedule.ErrInvalidDate})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agendamentos/horarios?data=20-06-2026", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAppointment(t *testing.T) {
	svc := &stubBooking{bookResult: booking.BookResult{AppointmentID: 42, EventID: "evt_1"}}
	r := appointmentsRouter(svc, &stubSlots{})

	body := `{"clienteId":5,"clienteNome":"Maria","servicos":["Corte"],"horario":"2026-06-20T10:00:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agendamentos", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, float64(42), data["agendamentoId"])
	assert.Equal(t, "evt_1", data["eventId"])
	assert.Equal(t, int64(5), svc.gotBook.ClientID)
	assert.Equal(t, []string{"Corte"}, svc.gotBook.Services)
}

func TestCreateAppointmentValidation(t *testing.T) {
	svc := &stubBooking{bookErr: &booking.ValidationError{Message: booking.MsgInvalidService}}
	r := appointmentsRouter(svc, &stubSlots{})

	body := `{"clienteId":5,"servicos":["Sobrancelha"],"horario":"2026-06-20T10:00:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agendamentos", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, booking.MsgInvalidService, *env.Error)
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	svc := &stubBooking{bookErr: booking.ErrSlotTaken}
	r := appointmentsRouter(svc, &stubSlots{})

	body := `{"clienteId":5,"servicos":["Corte"],"horario":"2026-06-20T10:00:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agendamentos", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelAppointment(t *testing.T) {
	svc := &stubBooking{}
	r := appointmentsRouter(svc, &stubSlots{})

	req := httptest.NewRequest(http.MethodPost, "/api/agendamentos/7/cancelar", strings.NewReader(`{"googleEventId":"evt_7"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.gotCancel.AppointmentID)
	assert.Equal(t, "evt_7", svc.gotCancel.EventID)
}

func TestCancelAppointmentNotFound(t *testing.T) {
	svc := &stubBooking{cancelErr: booking.ErrNotFound}
	r := appointmentsRouter(svc, &stubSlots{})

	req := httptest.NewRequest(http.MethodPost, "/api/agendamentos/99/cancelar", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRescheduleAppointment(t *testing.T) {
	svc := &stubBooking{bookResult: booking.BookResult{AppointmentID: 7, EventID: "evt_new"}}
	r := appointmentsRouter(svc, &stubSlots{})

	req := httptest.NewRequest(http.MethodPost, "/api/agendamentos/7/reagendar", strings.NewReader(`{"horario":"2026-06-22T15:00:00"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.gotResched.AppointmentID)
	assert.Equal(t, "2026-06-22T15:00:00", svc.gotResched.NewWhen)
}

func TestListActiveAppointments(t *testing.T) {
	svc := &stubBooking{active: []booking.ActiveAppointment{{
		ID:       3,
		EventID:  "evt_3",
		When:     time.Date(2026, 6, 20, 14, 30, 0, 0, time.UTC),
		Services: "Corte, Barba",
	}}}
	r := appointmentsRouter(svc, &stubSlots{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agendamentos?clienteId=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	items := env.Data.([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "20/06/2026 14:30", first["horario"])
	assert.Equal(t, "Corte, Barba", first["servicos"])
}
