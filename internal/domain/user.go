package domain

import "time"

// User is the authenticated identity returned by GET /me. It is owned by the
// session store: replaced wholesale on login/logout, and its permission set may
// be patched when the backend answers 403 with a corrected list.
type User struct {
	ID        int64        `json:"id"`
	PartyID   *int64       `json:"id_responsavel"`
	Name      string       `json:"nome"`
	CPF       string       `json:"cpf"`
	Email     string       `json:"email"`
	Perms     []Permission `json:"permissoes"`
	CreatedAt time.Time    `json:"criado_em"`
}

// Can reports whether the user holds every permission in required.
func (u *User) Can(required ...Permission) bool {
	if u == nil {
		return false
	}
	return HasAll(required, u.Perms)
}

// CanAny reports whether the user holds at least one permission in required.
func (u *User) CanAny(required ...Permission) bool {
	if u == nil {
		return false
	}
	return HasAny(required, u.Perms)
}

// Access is an account credential record managed through the admin screens.
// One access maps 1:1 to a login identity; it is administratively distinct
// from User, which is the session's own profile.
type Access struct {
	ID        int64        `json:"id"`
	PartyID   *int64       `json:"id_responsavel"`
	Name      string       `json:"nome"`
	CPF       string       `json:"cpf"`
	Email     string       `json:"email"`
	Active    bool         `json:"status"`
	Perms     []Permission `json:"permissoes"`
	CreatedBy *int64       `json:"criado_por"`
}
