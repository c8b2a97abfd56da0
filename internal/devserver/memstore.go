package devserver

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/chequelab/carteira/internal/domain"
)

// AccessRecord is an access plus its credential hash and bookkeeping the
// wire model doesn't carry.
type AccessRecord struct {
	domain.Access
	PasswordHash []byte
	CreatedAt    time.Time
}

// MemStore is the in-memory backing store for the dev server. All methods
// are safe for concurrent use.
type MemStore struct {
	mu  sync.Mutex
	seq int64

	accesses map[int64]*AccessRecord
	parties  map[int64]*domain.ResponsibleParty
	banks    map[int64]*domain.Bank
	accounts map[int64]*domain.BankAccount
	checks   map[int64]*domain.Check

	// sessions maps an access to its single active session ID. Logging in
	// again replaces it only when the caller asks to disconnect the other
	// session.
	sessions map[int64]string
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		accesses: make(map[int64]*AccessRecord),
		parties:  make(map[int64]*domain.ResponsibleParty),
		banks:    make(map[int64]*domain.Bank),
		accounts: make(map[int64]*domain.BankAccount),
		checks:   make(map[int64]*domain.Check),
		sessions: make(map[int64]string),
	}
}

func (s *MemStore) nextID() int64 {
	s.seq++
	return s.seq
}

// CreateAccess registers an access with a bcrypt-hashed password.
func (s *MemStore) CreateAccess(access domain.Access, password string) (*AccessRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	access.ID = s.nextID()
	record := &AccessRecord{
		Access:       access,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.accesses[access.ID] = record
	return record, nil
}

// FindAccessByCPF looks an access up by its normalized CPF.
func (s *MemStore) FindAccessByCPF(cpf string) (*AccessRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.accesses {
		if record.CPF == cpf {
			return record, true
		}
	}
	return nil, false
}

// GetAccess returns an access by ID.
func (s *MemStore) GetAccess(id int64) (*AccessRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.accesses[id]
	return record, ok
}

// ListAccesses returns all accesses in ID order.
func (s *MemStore) ListAccesses() []*domain.Access {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Access, 0, len(s.accesses))
	for _, record := range s.accesses {
		access := record.Access
		out = append(out, &access)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateAccess replaces the mutable fields of an access.
func (s *MemStore) UpdateAccess(id int64, update domain.Access) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accesses[id]
	if !ok {
		return false
	}
	record.PartyID = update.PartyID
	record.Name = update.Name
	record.Email = update.Email
	record.Active = update.Active
	return true
}

// SetPermissions replaces an access's permission set.
func (s *MemStore) SetPermissions(id int64, perms []domain.Permission) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accesses[id]
	if !ok {
		return false
	}
	record.Perms = perms
	return true
}

// DeleteAccess removes an access and its session.
func (s *MemStore) DeleteAccess(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accesses[id]; !ok {
		return false
	}
	delete(s.accesses, id)
	delete(s.sessions, id)
	return true
}

// BeginSession activates a session for an access. When another session is
// already active and force is false it refuses.
func (s *MemStore) BeginSession(accessID int64, sessionID string, force bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, active := s.sessions[accessID]; active && !force {
		return false
	}
	s.sessions[accessID] = sessionID
	return true
}

// SessionActive reports whether sessionID is the active session for accessID.
func (s *MemStore) SessionActive(accessID int64, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[accessID] == sessionID
}

// EndSession deactivates an access's session.
func (s *MemStore) EndSession(accessID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accessID)
}

// VerifyPassword checks a password against the stored hash.
func (r *AccessRecord) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(r.PasswordHash, []byte(password)) == nil
}

// CreateParty stores a responsible party.
func (s *MemStore) CreateParty(p domain.ResponsibleParty) *domain.ResponsibleParty {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	s.parties[p.ID] = &p
	return &p
}

// ListParties returns all parties in ID order.
func (s *MemStore) ListParties() []*domain.ResponsibleParty {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.ResponsibleParty, 0, len(s.parties))
	for _, p := range s.parties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateParty replaces a party's fields.
func (s *MemStore) UpdateParty(id int64, update domain.ResponsibleParty) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[id]
	if !ok {
		return false
	}
	p.Name = update.Name
	p.Email = update.Email
	p.Active = update.Active
	return true
}

// DeleteParty removes a party.
func (s *MemStore) DeleteParty(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[id]; !ok {
		return false
	}
	delete(s.parties, id)
	return true
}

// CreateBank stores a bank.
func (s *MemStore) CreateBank(b domain.Bank) *domain.Bank {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID()
	s.banks[b.ID] = &b
	return &b
}

// ListBanks returns all banks in ID order.
func (s *MemStore) ListBanks() []*domain.Bank {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Bank, 0, len(s.banks))
	for _, b := range s.banks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateBank replaces a bank's fields.
func (s *MemStore) UpdateBank(id int64, update domain.Bank) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.banks[id]
	if !ok {
		return false
	}
	b.Name = update.Name
	b.Code = update.Code
	return true
}

// DeleteBank removes a bank.
func (s *MemStore) DeleteBank(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[id]; !ok {
		return false
	}
	delete(s.banks, id)
	return true
}

// CreateAccount stores a bank account.
func (s *MemStore) CreateAccount(a domain.BankAccount) *domain.BankAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID()
	s.accounts[a.ID] = &a
	return &a
}

// ListAccounts returns all accounts in ID order.
func (s *MemStore) ListAccounts() []*domain.BankAccount {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.BankAccount, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateAccount replaces an account's fields.
func (s *MemStore) UpdateAccount(id int64, update domain.BankAccount) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return false
	}
	a.BankID = update.BankID
	a.Branch = update.Branch
	a.Number = update.Number
	a.Active = update.Active
	return true
}

// DeleteAccount removes an account.
func (s *MemStore) DeleteAccount(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return false
	}
	delete(s.accounts, id)
	return true
}

// CreateCheck stores a check.
func (s *MemStore) CreateCheck(c domain.Check) *domain.Check {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID()
	s.checks[c.ID] = &c
	return &c
}

// ListChecks returns checks matching the date range, in ID order.
func (s *MemStore) ListChecks(r domain.DateRange) []*domain.Check {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Check, 0, len(s.checks))
	for _, c := range s.checks {
		if r.Contains(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateCheck replaces a check's fields.
func (s *MemStore) UpdateCheck(id int64, update domain.Check) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checks[id]
	if !ok {
		return false
	}
	update.ID = c.ID
	update.CreatedBy = c.CreatedBy
	*c = update
	return true
}

// DeleteCheck removes a check.
func (s *MemStore) DeleteCheck(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checks[id]; !ok {
		return false
	}
	delete(s.checks, id)
	return true
}
