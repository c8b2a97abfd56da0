package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chequelab/carteira/internal/domain"
	"github.com/chequelab/carteira/internal/gateway"
)

type stubSession struct {
	token       string
	device      string
	invalidated bool
	downgraded  []domain.Permission
}

func (s *stubSession) Token() string       { return s.token }
func (s *stubSession) DeviceToken() string { return s.device }
func (s *stubSession) Invalidate()         { s.invalidated = true }
func (s *stubSession) DowngradePermissions(perms []domain.Permission) {
	s.downgraded = perms
}

func newClient(t *testing.T, handler http.HandlerFunc, session *stubSession) *gateway.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return gateway.New(server.URL, server.Client(), session, zerolog.Nop())
}

func TestGetAttachesAuthHeaders(t *testing.T) {
	session := &stubSession{token: "tok-123", device: "device-abc"}

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "device-abc", r.Header.Get("expotoken"))
		w.Write([]byte(`[{"id": 1, "nome": "Bradesco", "codigo": "237", "criado_por": 1}]`))
	}, session)

	var banks []*domain.Bank
	err := client.Get(context.Background(), gateway.RouteBanks, nil, &banks)
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "Bradesco", banks[0].Name)
}

func TestGetPassesQueryParams(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("inicio"))
		assert.Equal(t, "emissao", r.URL.Query().Get("filtro"))
		w.Write([]byte(`[]`))
	}, &stubSession{})

	params := url.Values{}
	params.Set("inicio", "2024-01-01")
	params.Set("fim", "2024-01-31")
	params.Set("filtro", "emissao")

	var checks []*domain.Check
	require.NoError(t, client.Get(context.Background(), gateway.RouteChecks, params, &checks))
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	session := &stubSession{token: "stale"}

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"mensagem": "Sessão expirada"}`))
	}, session)

	err := client.Get(context.Background(), gateway.RouteChecks, nil, nil)
	require.Error(t, err)
	assert.True(t, gateway.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Sessão expirada", err.Error())
	assert.True(t, session.invalidated, "401 must invalidate the session")
}

func TestForbiddenDowngradesPermissionsKeepsToken(t *testing.T) {
	session := &stubSession{token: "still-valid"}

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"mensagem": "Sem permissão", "permissoes": ["gerenciar_cheques"]}`))
	}, session)

	err := client.Post(context.Background(), gateway.RouteBanks, map[string]string{"nome": "Itaú"}, nil)
	require.Error(t, err)
	assert.True(t, gateway.IsStatus(err, http.StatusForbidden))
	assert.False(t, session.invalidated, "403 must not clear the session")
	assert.Equal(t, []domain.Permission{domain.PermManageChecks}, session.downgraded)
}

func TestNotFoundFallsBackToGenericMessage(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, &stubSession{})

	err := client.Delete(context.Background(), gateway.RouteBanks, 99, nil)
	require.Error(t, err)
	assert.True(t, gateway.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "recurso não encontrado", err.Error())
}

func TestServerErrorSurfacesMessageVerbatim(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"mensagem": "Erro interno inesperado"}`))
	}, &stubSession{})

	err := client.Get(context.Background(), gateway.RouteParties, nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Erro interno inesperado", err.Error())
}

func TestNetworkFailureIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing is listening anymore

	client := gateway.New(server.URL, nil, &stubSession{}, zerolog.Nop())
	err := client.Get(context.Background(), gateway.RouteBanks, nil, nil)
	assert.ErrorIs(t, err, gateway.ErrServerUnreachable)
}

func TestLoginDoesNotTouchSessionOnFailure(t *testing.T) {
	session := &stubSession{token: "existing"}

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"mensagem": "CPF ou senha incorretos"}`))
	}, session)

	_, err := client.Login(context.Background(), "12345678901", "wrong", false)
	require.Error(t, err)
	assert.Equal(t, "CPF ou senha incorretos", err.Error())
	assert.False(t, session.invalidated, "failed login must not tear down an existing session")
}

func TestLoginSuccess(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "login carries no bearer token")
		w.Write([]byte(`{"token": "tok-999", "mensagem": "Login realizado com sucesso!"}`))
	}, &stubSession{})

	resp, err := client.Login(context.Background(), "12345678901", "Str0ng!pass", false)
	require.NoError(t, err)
	assert.Equal(t, "tok-999", resp.Token)
	assert.Equal(t, "Login realizado com sucesso!", resp.Message)
}

func TestPutTargetsRecordByID(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/permissao/42", r.URL.Path)
		w.Write([]byte(`{"mensagem": "Permissões atualizadas"}`))
	}, &stubSession{token: "tok"})

	var resp gateway.MessageResponse
	err := client.Put(context.Background(), gateway.RoutePermissions, 42, map[string]any{"permissoes": []string{"gerenciar_bancos"}}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "Permissões atualizadas", resp.Message)
}
