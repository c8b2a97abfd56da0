package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chequelab/carteira/internal/domain"
	"github.com/chequelab/carteira/internal/gateway"
)

func newLoginCmd() *cobra.Command {
	var (
		cpf        string
		password   string
		disconnect bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Autentica com CPF e senha",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			cpf = domain.NormalizeCPF(cpf)
			if err := domain.ValidateCPF(cpf); err != nil {
				return fmt.Errorf("CPF deve conter 11 dígitos")
			}

			resp, err := a.gw.Login(ctx, cpf, password, disconnect)
			if err != nil {
				if gateway.IsStatus(err, http.StatusConflict) {
					return fmt.Errorf("%s (use --desconectar para encerrar a outra sessão)", err)
				}
				return err
			}

			// Persist the token before fetching the profile; the gateway reads
			// it from the session store.
			if err := a.session.SetSession(resp.Token, nil); err != nil {
				return err
			}

			var user domain.User
			if err := a.gw.Get(ctx, "me", nil, &user); err != nil {
				a.session.Invalidate()
				return err
			}
			if err := a.session.SetSession(resp.Token, &user); err != nil {
				return err
			}

			fmt.Println(resp.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&cpf, "cpf", "", "CPF do acesso")
	cmd.Flags().StringVar(&password, "senha", "", "Senha")
	cmd.Flags().BoolVar(&disconnect, "desconectar", false, "Encerra a sessão ativa em outro dispositivo")
	cmd.MarkFlagRequired("cpf")
	cmd.MarkFlagRequired("senha")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Encerra a sessão",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if _, err := a.requireSession(ctx); err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Get(ctx, "logout", nil, &resp); err != nil {
				// The backend may already consider the session dead; the local
				// state is cleared either way.
				a.logger.Debug().Err(err).Msg("logout request failed")
			}
			a.session.Invalidate()

			fmt.Println("Logout realizado com sucesso!")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var (
		name     string
		cpf      string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "registro",
		Short: "Cadastra um novo acesso",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := domain.ValidateName(name); err != nil {
				return fmt.Errorf("informe o nome")
			}
			cpf = domain.NormalizeCPF(cpf)
			if err := domain.ValidateCPF(cpf); err != nil {
				return fmt.Errorf("CPF deve conter 11 dígitos")
			}
			if err := domain.ValidateEmail(email); err != nil {
				return fmt.Errorf("e-mail inválido")
			}
			if err := domain.ValidatePassword(password); err != nil {
				return fmt.Errorf("a senha precisa de 8 caracteres com maiúscula, minúscula, número e símbolo")
			}

			msg, err := a.gw.Register(cmd.Context(), name, cpf, email, password)
			if err != nil {
				return err
			}

			fmt.Println(msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "nome", "", "Nome completo")
	cmd.Flags().StringVar(&cpf, "cpf", "", "CPF")
	cmd.Flags().StringVar(&email, "email", "", "E-mail")
	cmd.Flags().StringVar(&password, "senha", "", "Senha")
	cmd.MarkFlagRequired("nome")
	cmd.MarkFlagRequired("cpf")
	cmd.MarkFlagRequired("senha")

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Mostra o usuário autenticado",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			user, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Nome:  %s\n", user.Name)
			fmt.Printf("CPF:   %s\n", user.CPF)
			fmt.Printf("Email: %s\n", user.Email)

			perms := make([]string, 0, len(user.Perms))
			for _, p := range user.Perms {
				perms = append(perms, string(p))
			}
			if len(perms) == 0 {
				fmt.Println("Permissões: nenhuma")
			} else {
				fmt.Printf("Permissões: %s\n", strings.Join(perms, ", "))
			}
			return nil
		},
	}
}
