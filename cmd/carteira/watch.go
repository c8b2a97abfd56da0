package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chequelab/carteira/internal/monitor"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Acompanha a conectividade com o servidor",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ping := func(ctx context.Context) error {
				return a.gw.Get(ctx, "", nil, nil)
			}
			m := monitor.New(a.cfg.PingInterval, ping, func(online bool) {
				if online {
					fmt.Println("Servidor disponível")
				} else {
					fmt.Println("Não foi possível conectar ao servidor")
				}
			}, a.logger)

			fmt.Printf("Verificando %s a cada %s (Ctrl+C para sair)\n", a.cfg.APIBaseURL, a.cfg.PingInterval)
			m.Run(ctx)
			return nil
		},
	}
}
