package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendazap/agendazap/internal/clients"
)

type stubClients struct {
	client  *clients.Client
	err     error
	gotName string
}

func (s *stubClients) FindOrCreate(ctx context.Context, phone, profileName string) (*clients.Client, error) {
	return s.client, s.err
}

func (s *stubClients) FindByPhone(ctx context.Context, phone string) (*clients.Client, error) {
	return s.client, s.err
}

func (s *stubClients) Rename(ctx context.Context, id int64, newName string) (*clients.Client, error) {
	s.gotName = newName
	return s.client, s.err
}

func clientsRouter(repo *stubClients) http.Handler {
	h := NewClientsHandler(repo, nil)
	r := chi.NewRouter()
	r.Post("/api/clientes/buscar-ou-criar", h.FindOrCreate)
	r.Get("/api/clientes", h.Lookup)
	r.Put("/api/clientes/{id}/nome", h.Rename)
	return r
}

func TestFindOrCreateEndpoint(t *testing.T) {
	repo := &stubClients{client: &clients.Client{ID: 5, Name: "Maria", Phone: "+5511999999999"}}
	r := clientsRouter(repo)

	body := `{"telefone":"+5511999999999","profileName":"Maria"}`
	req := httptest.NewRequest(http.MethodPost, "/api/clientes/buscar-ou-criar", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, float64(5), data["id"])
	assert.Equal(t, "Maria", data["nome"])
}

func TestFindOrCreateRequiresPhone(t *testing.T) {
	r := clientsRouter(&stubClients{})

	req := httptest.NewRequest(http.MethodPost, "/api/clientes/buscar-ou-criar", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLookupNotFound(t *testing.T) {
	r := clientsRouter(&stubClients{err: clients.ErrClientNotFound})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clientes?telefone=%2B5511999999999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenameEndpoint(t *testing.T) {
	repo := &stubClients{client: &clients.Client{ID: 5, Name: "José Augusto", Phone: "+5511999999999"}}
	r := clientsRouter(repo)

	req := httptest.NewRequest(http.MethodPut, "/api/clientes/5/nome", strings.NewReader(`{"nome":"José Augusto"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "José Augusto", repo.gotName)
}

func TestRenameRejectsShortName(t *testing.T) {
	r := clientsRouter(&stubClients{err: clients.ErrInvalidName})

	req := httptest.NewRequest(http.MethodPut, "/api/clientes/5/nome", strings.NewReader(`{"nome":"Jo"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
