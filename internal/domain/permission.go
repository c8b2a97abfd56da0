package domain

// Permission is a capability flag carried by an access. The string values are
// the backend's wire identifiers.
type Permission string

const (
	PermManageAccesses     Permission = "gerenciar_acessos"
	PermManagePermissions  Permission = "gerenciar_permissoes"
	PermManageParties      Permission = "gerenciar_responsaveis"
	PermManageBanks        Permission = "gerenciar_bancos"
	PermManageBankAccounts Permission = "gerenciar_contas_bancarias"
	PermManageChecks       Permission = "gerenciar_cheques"
	PermManageBlockedDates Permission = "gerenciar_datas_bloqueadas"

	// PermFullView grants read access to every collection without granting
	// any of the manage permissions.
	PermFullView Permission = "visualizacao_total"
)

// AllPermissions lists every known permission.
var AllPermissions = []Permission{
	PermManageAccesses,
	PermManagePermissions,
	PermManageParties,
	PermManageBanks,
	PermManageBankAccounts,
	PermManageChecks,
	PermManageBlockedDates,
	PermFullView,
}

// IsValid checks if the permission is a known flag.
func (p Permission) IsValid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// HasAll reports whether held covers every permission in required. An empty
// requirement is vacuously satisfied.
func HasAll(required, held []Permission) bool {
	if len(required) == 0 {
		return true
	}

	set := make(map[Permission]struct{}, len(held))
	for _, p := range held {
		set[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}

// HasAny reports whether held covers at least one permission in required. An
// empty requirement is vacuously satisfied.
func HasAny(required, held []Permission) bool {
	if len(required) == 0 {
		return true
	}

	set := make(map[Permission]struct{}, len(held))
	for _, p := range held {
		set[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}
