package devserver

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/chequelab/carteira/internal/domain"
)

// errorBody is the backend error envelope. Permissions are attached only on
// 403 and carry the caller's corrected permission set.
type errorBody struct {
	Message     string              `json:"mensagem"`
	Permissions []domain.Permission `json:"permissoes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, perms []domain.Permission) {
	writeJSON(w, status, errorBody{Message: message, Permissions: perms})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"mensagem": message})
}

// Handlers implements the dev backend's routes.
type Handlers struct {
	store  *MemStore
	jwt    *JWTManager
	logger zerolog.Logger
}

// NewHandlers creates the route handlers.
func NewHandlers(store *MemStore, jwt *JWTManager, logger zerolog.Logger) *Handlers {
	return &Handlers{store: store, jwt: jwt, logger: logger}
}

// requireManage answers false and writes a 403 with the caller's actual
// permission set when the caller lacks the permission. This is the payload
// the client uses to downgrade its cached session.
func (h *Handlers) requireManage(w http.ResponseWriter, r *http.Request, perm domain.Permission) bool {
	access := callerAccess(r)
	if !domain.HasAll([]domain.Permission{perm}, access.Perms) {
		writeError(w, http.StatusForbidden, "Você não tem permissão para realizar esta ação", access.Perms)
		return false
	}
	return true
}

// requireView is the read-side gate: the matching manage permission or the
// full-view permission suffices.
func (h *Handlers) requireView(w http.ResponseWriter, r *http.Request, perm domain.Permission) bool {
	access := callerAccess(r)
	if !domain.HasAny([]domain.Permission{perm, domain.PermFullView}, access.Perms) {
		writeError(w, http.StatusForbidden, "Você não tem permissão para visualizar este recurso", access.Perms)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Recurso não encontrado", nil)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido", nil)
		return false
	}
	return true
}

// Root is the public heartbeat used by the connectivity monitor.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

type loginRequest struct {
	CPF        string `json:"cpf"`
	Password   string `json:"senha"`
	Disconnect bool   `json:"deslogar"`
}

// Login authenticates by CPF and password. A second login for the same
// access is refused unless deslogar forces the other session out.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	record, ok := h.store.FindAccessByCPF(domain.NormalizeCPF(req.CPF))
	if !ok || !record.VerifyPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "CPF ou senha incorretos", nil)
		return
	}
	if !record.Active {
		writeError(w, http.StatusUnauthorized, "Acesso desativado", nil)
		return
	}

	sessionID := ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)).String()
	if !h.store.BeginSession(record.ID, sessionID, req.Disconnect) {
		writeError(w, http.StatusConflict, "Usuário já está logado", nil)
		return
	}

	token, err := h.jwt.Generate(record.ID, record.CPF, sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Não foi possível gerar o token", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"mensagem": "Login realizado com sucesso!",
	})
}

type registerRequest struct {
	Name     string `json:"nome"`
	CPF      string `json:"cpf"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// Register creates a new access with no permissions. An administrator
// grants them later through PUT /permissao/{id}.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := domain.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, "Informe o nome", nil)
		return
	}
	if err := domain.ValidateCPF(req.CPF); err != nil {
		writeError(w, http.StatusBadRequest, "CPF deve conter 11 dígitos", nil)
		return
	}
	if err := domain.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "E-mail inválido", nil)
		return
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "Senha fraca", nil)
		return
	}

	cpf := domain.NormalizeCPF(req.CPF)
	if _, exists := h.store.FindAccessByCPF(cpf); exists {
		writeError(w, http.StatusConflict, "CPF já cadastrado", nil)
		return
	}

	_, err := h.store.CreateAccess(domain.Access{
		Name:   req.Name,
		CPF:    cpf,
		Email:  req.Email,
		Active: true,
		Perms:  []domain.Permission{},
	}, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Não foi possível criar o acesso", nil)
		return
	}

	writeMessage(w, http.StatusCreated, "Cadastro realizado com sucesso!")
}

// Me returns the caller's profile as a user.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	access := callerAccess(r)
	writeJSON(w, http.StatusOK, domain.User{
		ID:        access.ID,
		PartyID:   access.PartyID,
		Name:      access.Name,
		CPF:       access.CPF,
		Email:     access.Email,
		Perms:     access.Perms,
		CreatedAt: access.CreatedAt,
	})
}

// PingAuth is the authenticated heartbeat used to revalidate restored sessions.
func (h *Handlers) PingAuth(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "pong")
}

// Logout ends the caller's session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	access := callerAccess(r)
	h.store.EndSession(access.ID)
	writeMessage(w, http.StatusOK, "Logout realizado com sucesso!")
}

// --- Accesses ---

func (h *Handlers) ListAccesses(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageAccesses) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.ListAccesses())
}

type accessRequest struct {
	PartyID  *int64              `json:"id_responsavel"`
	Name     string              `json:"nome"`
	CPF      string              `json:"cpf"`
	Email    string              `json:"email"`
	Password string              `json:"senha"`
	Active   bool                `json:"status"`
	Perms    []domain.Permission `json:"permissoes"`
}

func (h *Handlers) CreateAccess(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageAccesses) {
		return
	}
	var req accessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := domain.ValidateCPF(req.CPF); err != nil {
		writeError(w, http.StatusBadRequest, "CPF deve conter 11 dígitos", nil)
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Informe a senha", nil)
		return
	}

	caller := callerAccess(r)
	creator := caller.ID
	if req.Perms == nil {
		req.Perms = []domain.Permission{}
	}
	_, err := h.store.CreateAccess(domain.Access{
		PartyID:   req.PartyID,
		Name:      req.Name,
		CPF:       domain.NormalizeCPF(req.CPF),
		Email:     req.Email,
		Active:    req.Active,
		Perms:     req.Perms,
		CreatedBy: &creator,
	}, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Não foi possível criar o acesso", nil)
		return
	}
	writeMessage(w, http.StatusCreated, "Acesso criado com sucesso!")
}

func (h *Handlers) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageAccesses) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req accessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.store.UpdateAccess(id, domain.Access{
		PartyID: req.PartyID,
		Name:    req.Name,
		Email:   req.Email,
		Active:  req.Active,
	}) {
		writeError(w, http.StatusNotFound, "Acesso não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Acesso atualizado com sucesso!")
}

func (h *Handlers) DeleteAccess(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageAccesses) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.store.DeleteAccess(id) {
		writeError(w, http.StatusNotFound, "Acesso não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Acesso removido com sucesso!")
}

// SetPermissions replaces an access's permission set.
func (h *Handlers) SetPermissions(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManagePermissions) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Perms []domain.Permission `json:"permissoes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	for _, p := range req.Perms {
		if !p.IsValid() {
			writeError(w, http.StatusBadRequest, "Permissão desconhecida: "+string(p), nil)
			return
		}
	}
	if req.Perms == nil {
		req.Perms = []domain.Permission{}
	}
	if !h.store.SetPermissions(id, req.Perms) {
		writeError(w, http.StatusNotFound, "Acesso não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Permissões atualizadas com sucesso!")
}

// --- Responsible parties ---

func (h *Handlers) ListParties(w http.ResponseWriter, r *http.Request) {
	if !h.requireView(w, r, domain.PermManageParties) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.ListParties())
}

func (h *Handlers) CreateParty(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageParties) {
		return
	}
	var req domain.ResponsibleParty
	if !decodeBody(w, r, &req) {
		return
	}
	if err := domain.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, "Informe o nome", nil)
		return
	}
	creator := callerAccess(r).ID
	req.CreatedBy = &creator
	h.store.CreateParty(req)
	writeMessage(w, http.StatusCreated, "Responsável criado com sucesso!")
}

func (h *Handlers) UpdateParty(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageParties) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.ResponsibleParty
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.store.UpdateParty(id, req) {
		writeError(w, http.StatusNotFound, "Responsável não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Responsável atualizado com sucesso!")
}

func (h *Handlers) DeleteParty(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageParties) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.store.DeleteParty(id) {
		writeError(w, http.StatusNotFound, "Responsável não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Responsável removido com sucesso!")
}

// --- Banks ---

func (h *Handlers) ListBanks(w http.ResponseWriter, r *http.Request) {
	if !h.requireView(w, r, domain.PermManageBanks) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.ListBanks())
}

func (h *Handlers) CreateBank(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageBanks) {
		return
	}
	var req domain.Bank
	if !decodeBody(w, r, &req) {
		return
	}
	if err := domain.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, "Informe o nome", nil)
		return
	}
	if err := domain.ValidateBankCode(req.Code); err != nil {
		writeError(w, http.StatusBadRequest, "Código do banco inválido", nil)
		return
	}
	req.CreatedBy = callerAccess(r).ID
	h.store.CreateBank(req)
	writeMessage(w, http.StatusCreated, "Banco criado com sucesso!")
}

func (h *Handlers) UpdateBank(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageBanks) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.Bank
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.store.UpdateBank(id, req) {
		writeError(w, http.StatusNotFound, "Banco não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Banco atualizado com sucesso!")
}

func (h *Handlers) DeleteBank(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageBanks) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.store.DeleteBank(id) {
		writeError(w, http.StatusNotFound, "Banco não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Banco removido com sucesso!")
}

// --- Bank accounts ---

func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if !h.requireView(w, r, domain.PermManageBankAccounts) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.ListAccounts())
}

func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageBankAccounts) {
		return
	}
	var req domain.BankAccount
	if !decodeBody(w, r, &req) {
		return
	}
	req.CreatedBy = callerAccess(r).ID
	h.store.CreateAccount(req)
	writeMessage(w, http.StatusCreated, "Conta criada com sucesso!")
}

func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageBankAccounts) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.BankAccount
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.store.UpdateAccount(id, req) {
		writeError(w, http.StatusNotFound, "Conta não encontrada", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Conta atualizada com sucesso!")
}

func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageBankAccounts) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.store.DeleteAccount(id) {
		writeError(w, http.StatusNotFound, "Conta não encontrada", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Conta removida com sucesso!")
}

// --- Checks ---

const dateParamLayout = "2006-01-02"

// ListChecks filters by the inicio/fim window over the field chosen by
// filtro (emissao or vencimento). Without parameters the issue-date filter
// spans today only, mirroring the client's default.
func (h *Handlers) ListChecks(w http.ResponseWriter, r *http.Request) {
	if !h.requireView(w, r, domain.PermManageChecks) {
		return
	}

	now := time.Now()
	filter := domain.DateRange{Start: now, End: now, Field: domain.FilterByIssueDate}

	if v := r.URL.Query().Get("inicio"); v != "" {
		if parsed, err := time.Parse(dateParamLayout, v); err == nil {
			filter.Start = parsed
		}
	}
	if v := r.URL.Query().Get("fim"); v != "" {
		if parsed, err := time.Parse(dateParamLayout, v); err == nil {
			filter.End = parsed
		}
	}
	if f := domain.DateField(r.URL.Query().Get("filtro")); f.IsValid() {
		filter.Field = f
	}

	writeJSON(w, http.StatusOK, h.store.ListChecks(filter))
}

func (h *Handlers) CreateCheck(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageChecks) {
		return
	}
	var req domain.Check
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	req.CreatedBy = callerAccess(r).ID
	h.store.CreateCheck(req)
	writeMessage(w, http.StatusCreated, "Cheque criado com sucesso!")
}

func (h *Handlers) UpdateCheck(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageChecks) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.Check
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if !h.store.UpdateCheck(id, req) {
		writeError(w, http.StatusNotFound, "Cheque não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Cheque atualizado com sucesso!")
}

func (h *Handlers) DeleteCheck(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r, domain.PermManageChecks) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.store.DeleteCheck(id) {
		writeError(w, http.StatusNotFound, "Cheque não encontrado", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Cheque removido com sucesso!")
}
