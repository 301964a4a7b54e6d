package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agendazap/agendazap/internal/clients"
	"github.com/agendazap/agendazap/pkg/logging"
)

type clientRepository interface {
	FindOrCreate(ctx context.Context, phone, profileName string) (*clients.Client, error)
	FindByPhone(ctx context.Context, phone string) (*clients.Client, error)
	Rename(ctx context.Context, id int64, newName string) (*clients.Client, error)
}

// ClientsHandler serves the client registry endpoints.
type ClientsHandler struct {
	repo   clientRepository
	logger *logging.Logger
}

func NewClientsHandler(repo clientRepository, logger *logging.Logger) *ClientsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ClientsHandler{repo: repo, logger: logger}
}

type findOrCreateRequest struct {
	Phone       string `json:"telefone"`
	ProfileName string `json:"profileName"`
}

type clientPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Phone string `json:"telefone"`
}

func toClientPayload(c *clients.Client) clientPayload {
	return clientPayload{ID: c.ID, Name: c.Name, Phone: c.Phone}
}

// FindOrCreate resolves a phone to an existing client or registers one.
func (h *ClientsHandler) FindOrCreate(w http.ResponseWriter, r *http.Request) {
	var req findOrCreateRequest
	if err := decodeJSON(r, &req); err != nil || req.Phone == "" {
		respondError(w, http.StatusBadRequest, "telefone é obrigatório")
		return
	}
	c, err := h.repo.FindOrCreate(r.Context(), req.Phone, req.ProfileName)
	if err != nil {
		if errors.Is(err, clients.ErrInvalidPhone) || errors.Is(err, clients.ErrInvalidName) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("find-or-create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}
	respondOK(w, toClientPayload(c))
}

// Lookup fetches a client by ?telefone= without creating one.
func (h *ClientsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("telefone")
	if phone == "" {
		respondError(w, http.StatusBadRequest, "telefone é obrigatório")
		return
	}
	c, err := h.repo.FindByPhone(r.Context(), phone)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrClientNotFound):
			respondError(w, http.StatusNotFound, "Cliente não encontrado")
		case errors.Is(err, clients.ErrInvalidPhone):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("client lookup failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		}
		return
	}
	respondOK(w, toClientPayload(c))
}

type renameRequest struct {
	Name string `json:"nome"`
}

// Rename updates a client's display name.
func (h *ClientsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "id inválido")
		return
	}
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "nome é obrigatório")
		return
	}
	c, err := h.repo.Rename(r.Context(), id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrClientNotFound):
			respondError(w, http.StatusNotFound, "Cliente não encontrado")
		case errors.Is(err, clients.ErrInvalidName):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("rename failed", "client_id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		}
		return
	}
	respondOK(w, toClientPayload(c))
}
