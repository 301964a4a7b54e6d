package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agendazap/agendazap/internal/booking"
	"github.com/agendazap/agendazap/internal/parser"
	"github.com/agendazap/agendazap/internal/schedule"
	"github.com/agendazap/agendazap/pkg/logging"
)

type bookingService interface {
	Book(ctx context.Context, req booking.BookRequest) (booking.BookResult, error)
	Cancel(ctx context.Context, req booking.CancelRequest) error
	Reschedule(ctx context.Context, req booking.RescheduleRequest) (booking.BookResult, error)
	ListActive(ctx context.Context, clientID int64) ([]booking.ActiveAppointment, error)
}

type slotLister interface {
	AvailableSlots(ctx context.Context, date string) ([]string, error)
}

// AppointmentsHandler serves the direct REST surface over the booking
// coordinator, bypassing the chat flow.
type AppointmentsHandler struct {
	booking  bookingService
	schedule slotLister
	logger   *logging.Logger
}

func NewAppointmentsHandler(svc bookingService, sched slotLister, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{booking: svc, schedule: sched, logger: logger}
}

// Slots lists free times for a date given as ?data=YYYY-MM-DD.
func (h *AppointmentsHandler) Slots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("data")
	if date == "" {
		respondError(w, http.StatusBadRequest, `Parâmetro "data" é obrigatório`)
		return
	}
	slots, err := h.schedule.AvailableSlots(r.Context(), date)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidDate) {
			respondError(w, http.StatusBadRequest, "Data inválida. Use o formato YYYY-MM-DD.")
			return
		}
		h.logger.Error("slot listing failed", "date", date, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}
	respondOK(w, slots)
}

type createAppointmentRequest struct {
	ClientID   int64    `json:"clienteId"`
	ClientName string   `json:"clienteNome"`
	Services   []string `json:"servicos"`
	When       string   `json:"horario"`
}

// Create books an appointment directly.
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	result, err := h.booking.Book(r.Context(), booking.BookRequest{
		ClientID:   req.ClientID,
		ClientName: req.ClientName,
		Services:   req.Services,
		When:       req.When,
	})
	if err != nil {
		if v, ok := booking.AsValidation(err); ok {
			respondError(w, http.StatusBadRequest, v.Message)
			return
		}
		if errors.Is(err, booking.ErrSlotTaken) {
			respondError(w, http.StatusConflict, booking.MsgInvalidTime)
			return
		}
		h.logger.Error("direct booking failed", "client_id", req.ClientID, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}
	respondOK(w, map[string]any{
		"agendamentoId": result.AppointmentID,
		"eventId":       result.EventID,
	})
}

// ListActive returns a client's active appointments, ?clienteId= required.
func (h *AppointmentsHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(r.URL.Query().Get("clienteId"), 10, 64)
	if err != nil || clientID <= 0 {
		respondError(w, http.StatusBadRequest, `Parâmetro "clienteId" é obrigatório`)
		return
	}
	active, err := h.booking.ListActive(r.Context(), clientID)
	if err != nil {
		h.logger.Error("active listing failed", "client_id", clientID, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}
	out := make([]map[string]any, 0, len(active))
	for _, a := range active {
		out = append(out, map[string]any{
			"agendamentoId": a.ID,
			"eventId":       a.EventID,
			"horario":       parser.FormatDateTimeBR(a.When),
			"servicos":      a.Services,
		})
	}
	respondOK(w, out)
}

type cancelAppointmentRequest struct {
	EventID  string `json:"googleEventId"`
	ClientID int64  `json:"clienteId"`
}

// Cancel voids an appointment by path id.
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "agendamentoId é obrigatório")
		return
	}
	var req cancelAppointmentRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
			return
		}
	}
	err = h.booking.Cancel(r.Context(), booking.CancelRequest{
		AppointmentID: id,
		EventID:       req.EventID,
		ClientID:      req.ClientID,
	})
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Agendamento não encontrado")
			return
		}
		h.logger.Error("direct cancel failed", "appointment_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}
	respondOK(w, nil)
}

type rescheduleAppointmentRequest struct {
	When     string `json:"horario"`
	ClientID int64  `json:"clienteId"`
}

// Reschedule moves an appointment to a new time.
func (h *AppointmentsHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "agendamentoId é obrigatório")
		return
	}
	var req rescheduleAppointmentRequest
	if err := decodeJSON(r, &req); err != nil || req.When == "" {
		respondError(w, http.StatusBadRequest, `Campo "horario" é obrigatório`)
		return
	}
	result, err := h.booking.Reschedule(r.Context(), booking.RescheduleRequest{
		AppointmentID: id,
		NewWhen:       req.When,
		ClientID:      req.ClientID,
	})
	if err != nil {
		if v, ok := booking.AsValidation(err); ok {
			respondError(w, http.StatusBadRequest, v.Message)
			return
		}
		if errors.Is(err, booking.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Agendamento não encontrado")
			return
		}
		h.logger.Error("direct reschedule failed", "appointment_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}
	respondOK(w, map[string]any{
		"agendamentoId": result.AppointmentID,
		"eventId":       result.EventID,
	})
}
