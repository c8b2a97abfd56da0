package datastore_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chequelab/carteira/internal/datastore"
	"github.com/chequelab/carteira/internal/domain"
	"github.com/chequelab/carteira/internal/gateway"
)

type stubGateway struct {
	mu    sync.Mutex
	calls []string
	// handler answers one Get call. Assigning to out is the caller's job.
	handler func(route string, params url.Values, out any) error
}

func (g *stubGateway) Get(_ context.Context, route string, params url.Values, out any) error {
	g.mu.Lock()
	g.calls = append(g.calls, route)
	g.mu.Unlock()
	if g.handler != nil {
		return g.handler(route, params, out)
	}
	return nil
}

func (g *stubGateway) callCount(route string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == route {
			n++
		}
	}
	return n
}

type stubUserSource struct {
	user *domain.User
}

func (s *stubUserSource) User() *domain.User { return s.user }

func adminUser() *domain.User {
	return &domain.User{ID: 1, Perms: []domain.Permission{domain.PermManageAccesses, domain.PermManageChecks}}
}

func defaultFilter() domain.DateRange {
	return domain.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Field: domain.FilterByIssueDate,
	}
}

func TestRefreshBanksSortsByName(t *testing.T) {
	gw := &stubGateway{handler: func(route string, _ url.Values, out any) error {
		*(out.(*[]*domain.Bank)) = []*domain.Bank{
			{ID: 1, Name: "Santander"},
			{ID: 2, Name: "Banco do Brasil"},
			{ID: 3, Name: "Itaú"},
		}
		return nil
	}}

	store := datastore.New(gw, &stubUserSource{user: adminUser()}, defaultFilter(), zerolog.Nop())
	require.NoError(t, store.RefreshBanks(context.Background()))

	banks := store.Banks()
	require.Len(t, banks, 3)
	assert.Equal(t, "Banco do Brasil", banks[0].Name)
	assert.Equal(t, "Itaú", banks[1].Name)
	assert.Equal(t, "Santander", banks[2].Name)
}

func TestRefreshClearsCollectionOnError(t *testing.T) {
	fail := false
	gw := &stubGateway{handler: func(route string, _ url.Values, out any) error {
		if fail {
			return errors.New("backend down")
		}
		*(out.(*[]*domain.Bank)) = []*domain.Bank{{ID: 1, Name: "Itaú"}}
		return nil
	}}

	store := datastore.New(gw, &stubUserSource{user: adminUser()}, defaultFilter(), zerolog.Nop())
	require.NoError(t, store.RefreshBanks(context.Background()))
	require.Len(t, store.Banks(), 1)

	fail = true
	err := store.RefreshBanks(context.Background())
	require.Error(t, err)
	assert.Empty(t, store.Banks(), "failed refresh must clear the collection")
}

func TestRefreshAccessesPermissionGate(t *testing.T) {
	gw := &stubGateway{handler: func(route string, _ url.Values, out any) error {
		*(out.(*[]*domain.Access)) = []*domain.Access{{ID: 1, Name: "Beto"}}
		return nil
	}}

	// Without manage-accesses the fetch is never attempted.
	user := &domain.User{ID: 2, Perms: []domain.Permission{domain.PermManageChecks}}
	store := datastore.New(gw, &stubUserSource{user: user}, defaultFilter(), zerolog.Nop())

	require.NoError(t, store.RefreshAccesses(context.Background()))
	assert.Zero(t, gw.callCount(gateway.RouteAccesses), "fetch must not happen without permission")
	assert.Empty(t, store.Accesses())

	// With the permission it goes through.
	admin := datastore.New(gw, &stubUserSource{user: adminUser()}, defaultFilter(), zerolog.Nop())
	require.NoError(t, admin.RefreshAccesses(context.Background()))
	assert.Equal(t, 1, gw.callCount(gateway.RouteAccesses))
	require.Len(t, admin.Accesses(), 1)
}

func TestRefreshChecksSendsFilterParams(t *testing.T) {
	var gotParams url.Values
	gw := &stubGateway{handler: func(route string, params url.Values, out any) error {
		gotParams = params
		*(out.(*[]*domain.Check)) = []*domain.Check{{ID: 1}}
		return nil
	}}

	store := datastore.New(gw, &stubUserSource{user: adminUser()}, domain.DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Field: domain.FilterByDueDate,
	}, zerolog.Nop())

	require.NoError(t, store.RefreshChecks(context.Background()))
	assert.Equal(t, "2024-03-01", gotParams.Get("inicio"))
	assert.Equal(t, "2024-03-31", gotParams.Get("fim"))
	assert.Equal(t, "vencimento", gotParams.Get("filtro"))
	assert.Len(t, store.Checks(), 1)
}

func TestStaleCheckFetchIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &stubGateway{handler: func(route string, params url.Values, out any) error {
		if route != gateway.RouteChecks {
			return nil
		}
		if params.Get("filtro") == string(domain.FilterByIssueDate) {
			// Simulate a slow in-flight fetch: block until the filter has
			// changed underneath it, then answer with the old window's data.
			close(started)
			<-release
			*(out.(*[]*domain.Check)) = []*domain.Check{{ID: 100, Number: "old"}}
			return nil
		}
		*(out.(*[]*domain.Check)) = []*domain.Check{{ID: 200, Number: "new"}}
		return nil
	}}

	store := datastore.New(gw, &stubUserSource{user: adminUser()}, defaultFilter(), zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		done <- store.RefreshChecks(context.Background())
	}()
	<-started

	// Change the filter while the first fetch is still in flight. This bumps
	// the generation and fetches the new window.
	newFilter := defaultFilter()
	newFilter.Field = domain.FilterByDueDate
	require.NoError(t, store.SetFilter(context.Background(), newFilter))
	require.Len(t, store.Checks(), 1)
	assert.Equal(t, int64(200), store.Checks()[0].ID)

	// Let the stale fetch land; its result must be discarded.
	close(release)
	require.NoError(t, <-done)
	require.Len(t, store.Checks(), 1)
	assert.Equal(t, int64(200), store.Checks()[0].ID, "stale response must not overwrite newer state")
}

func TestSearchUsesCachedCollections(t *testing.T) {
	gw := &stubGateway{handler: func(route string, _ url.Values, out any) error {
		switch route {
		case gateway.RouteParties:
			*(out.(*[]*domain.ResponsibleParty)) = []*domain.ResponsibleParty{{ID: 1, Name: "João Pereira"}}
		case gateway.RouteChecks:
			*(out.(*[]*domain.Check)) = []*domain.Check{
				{ID: 1, PartyID: 1, Number: "000123", Status: domain.StatusUpcoming, Operation: domain.OperationPayable},
				{ID: 2, PartyID: 9, Number: "000456", Status: domain.StatusPaid, Operation: domain.OperationReceivable},
			}
		}
		return nil
	}}

	store := datastore.New(gw, &stubUserSource{user: adminUser()}, defaultFilter(), zerolog.Nop())
	require.NoError(t, store.RefreshParties(context.Background()))
	require.NoError(t, store.RefreshChecks(context.Background()))

	got := store.Search("joão")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	assert.Len(t, store.Search(""), 2)
}
