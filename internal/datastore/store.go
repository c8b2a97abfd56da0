// Package datastore caches the reference collections (banks, accounts,
// responsible parties, accesses) and the check list scoped to the active
// date-range filter. Each refresh replaces its collection wholesale; on
// failure the collection is cleared and the error surfaced.
package datastore

import (
	"context"
	"net/url"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/chequelab/carteira/internal/domain"
	"github.com/chequelab/carteira/internal/gateway"
)

// dateParamLayout is how the backend expects inicio/fim query values.
const dateParamLayout = "2006-01-02"

// Gateway is the slice of the HTTP gateway the store consumes.
type Gateway interface {
	Get(ctx context.Context, route string, params url.Values, out any) error
}

// UserSource exposes the session user for the accesses permission gate.
type UserSource interface {
	User() *domain.User
}

// Store owns the fetched collections for the lifetime of an authenticated
// session. Collections are torn down with the session.
type Store struct {
	mu sync.RWMutex

	gw      Gateway
	session UserSource
	logger  zerolog.Logger

	banks    []*domain.Bank
	accounts []*domain.BankAccount
	parties  []*domain.ResponsibleParty
	accesses []*domain.Access
	checks   []*domain.Check

	filter domain.DateRange

	// checksGen guards against an in-flight checks fetch landing after the
	// filter changed: stale responses are discarded instead of overwriting
	// newer state.
	checksGen uint64

	collator *collate.Collator
}

// New creates a data store bound to a gateway and session.
func New(gw Gateway, session UserSource, filter domain.DateRange, logger zerolog.Logger) *Store {
	return &Store{
		gw:       gw,
		session:  session,
		filter:   filter,
		logger:   logger,
		collator: collate.New(language.BrazilianPortuguese, collate.IgnoreCase),
	}
}

// Banks returns the cached bank list, sorted by name.
func (s *Store) Banks() []*domain.Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banks
}

// Accounts returns the cached bank accounts in backend order.
func (s *Store) Accounts() []*domain.BankAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts
}

// Parties returns the cached responsible parties, sorted by name.
func (s *Store) Parties() []*domain.ResponsibleParty {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parties
}

// Accesses returns the cached access records, sorted by name.
func (s *Store) Accesses() []*domain.Access {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accesses
}

// Checks returns the cached check list in backend order.
func (s *Store) Checks() []*domain.Check {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checks
}

// Filter returns the active date-range filter.
func (s *Store) Filter() domain.DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// RefreshBanks replaces the bank collection.
func (s *Store) RefreshBanks(ctx context.Context) error {
	var banks []*domain.Bank
	if err := s.gw.Get(ctx, gateway.RouteBanks, nil, &banks); err != nil {
		s.mu.Lock()
		s.banks = nil
		s.mu.Unlock()
		return err
	}

	sort.SliceStable(banks, func(i, j int) bool {
		return s.collator.CompareString(banks[i].Name, banks[j].Name) < 0
	})

	s.mu.Lock()
	s.banks = banks
	s.mu.Unlock()
	return nil
}

// RefreshAccounts replaces the bank account collection, preserving backend order.
func (s *Store) RefreshAccounts(ctx context.Context) error {
	var accounts []*domain.BankAccount
	if err := s.gw.Get(ctx, gateway.RouteAccounts, nil, &accounts); err != nil {
		s.mu.Lock()
		s.accounts = nil
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.accounts = accounts
	s.mu.Unlock()
	return nil
}

// RefreshParties replaces the responsible party collection.
func (s *Store) RefreshParties(ctx context.Context) error {
	var parties []*domain.ResponsibleParty
	if err := s.gw.Get(ctx, gateway.RouteParties, nil, &parties); err != nil {
		s.mu.Lock()
		s.parties = nil
		s.mu.Unlock()
		return err
	}

	sort.SliceStable(parties, func(i, j int) bool {
		return s.collator.CompareString(parties[i].Name, parties[j].Name) < 0
	})

	s.mu.Lock()
	s.parties = parties
	s.mu.Unlock()
	return nil
}

// RefreshAccesses replaces the access collection. The fetch only happens
// when the session user holds the manage-accesses permission; without it the
// collection stays empty and no request is made.
func (s *Store) RefreshAccesses(ctx context.Context) error {
	if !s.session.User().Can(domain.PermManageAccesses) {
		s.logger.Debug().Msg("skipping access fetch without manage-accesses permission")
		return nil
	}

	var accesses []*domain.Access
	if err := s.gw.Get(ctx, gateway.RouteAccesses, nil, &accesses); err != nil {
		s.mu.Lock()
		s.accesses = nil
		s.mu.Unlock()
		return err
	}

	sort.SliceStable(accesses, func(i, j int) bool {
		return s.collator.CompareString(accesses[i].Name, accesses[j].Name) < 0
	})

	s.mu.Lock()
	s.accesses = accesses
	s.mu.Unlock()
	return nil
}

// RefreshChecks replaces the check list using the active filter as query
// parameters. A response that arrives after the filter changed again is
// discarded.
func (s *Store) RefreshChecks(ctx context.Context) error {
	s.mu.RLock()
	filter := s.filter
	gen := s.checksGen
	s.mu.RUnlock()

	params := url.Values{}
	params.Set("inicio", filter.Start.Format(dateParamLayout))
	params.Set("fim", filter.End.Format(dateParamLayout))
	params.Set("filtro", string(filter.Field))

	var checks []*domain.Check
	if err := s.gw.Get(ctx, gateway.RouteChecks, params, &checks); err != nil {
		s.mu.Lock()
		if gen == s.checksGen {
			s.checks = nil
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.checksGen {
		s.logger.Debug().Msg("discarding stale check fetch result")
		return nil
	}
	s.checks = checks
	return nil
}

// SetFilter replaces the active filter and refetches the check list.
func (s *Store) SetFilter(ctx context.Context, filter domain.DateRange) error {
	s.mu.Lock()
	s.filter = filter
	s.checksGen++
	s.mu.Unlock()

	return s.RefreshChecks(ctx)
}

// RefreshAll fetches every collection, honoring the accesses permission
// gate. The first error is returned after all fetches ran.
func (s *Store) RefreshAll(ctx context.Context) error {
	var firstErr error
	for _, refresh := range []func(context.Context) error{
		s.RefreshParties,
		s.RefreshBanks,
		s.RefreshAccounts,
		s.RefreshAccesses,
		s.RefreshChecks,
	} {
		if err := refresh(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Search filters the cached check list by a free-text query.
func (s *Store) Search(query string) []*domain.Check {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := domain.NewSearchIndex(s.parties, s.accounts)
	return domain.SearchChecks(s.checks, query, idx)
}

// Summary aggregates the cached check list for the dashboard.
func (s *Store) Summary() domain.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Summarize(s.checks)
}
