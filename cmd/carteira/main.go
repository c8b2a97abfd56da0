package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chequelab/carteira/internal/datastore"
	"github.com/chequelab/carteira/internal/domain"
	"github.com/chequelab/carteira/internal/gateway"
	"github.com/chequelab/carteira/internal/infrastructure/config"
	"github.com/chequelab/carteira/internal/infrastructure/logging"
	"github.com/chequelab/carteira/internal/session"
)

// app wires the session store, gateway and data store for a single command
// invocation.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	session *session.Store
	gw      *gateway.Client
	data    *datastore.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	store, err := session.NewStore(cfg.StateDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gw := gateway.New(cfg.APIBaseURL, httpClient, store, logger)

	data := datastore.New(gw, store, defaultFilter(), logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		session: store,
		gw:      gw,
		data:    data,
	}, nil
}

// requireSession restores the persisted session and revalidates it against
// the backend. Commands that talk to authenticated routes call this first.
func (a *app) requireSession(ctx context.Context) (*domain.User, error) {
	if a.session.Authenticated() {
		return a.session.User(), nil
	}

	restored, err := a.session.Restore(ctx, func(ctx context.Context) error {
		return a.gw.Get(ctx, "ping-auth", nil, nil)
	})
	if err != nil {
		if errors.Is(err, gateway.ErrServerUnreachable) {
			return nil, err
		}
		return nil, errors.New("sua sessão expirou, faça login novamente")
	}
	if !restored {
		return nil, errors.New("você não está logado")
	}
	return a.session.User(), nil
}

// requirePerm gates a command on a permission before any request is made.
func (a *app) requirePerm(ctx context.Context, perms ...domain.Permission) (*domain.User, error) {
	user, err := a.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if !user.CanAny(perms...) {
		return nil, errors.New("você não tem permissão para esta ação")
	}
	return user, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "carteira",
		Short:         "Carteira de cheques",
		Long:          `Gerencia bancos, contas, responsáveis e o ciclo de vida de cheques.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newWhoamiCmd(),
		newBankCmd(),
		newAccountCmd(),
		newPartyCmd(),
		newAccessCmd(),
		newPermissionCmd(),
		newCheckCmd(),
		newDashboardCmd(),
		newWatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		os.Exit(1)
	}
}
