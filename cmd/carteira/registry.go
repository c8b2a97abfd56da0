package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chequelab/carteira/internal/domain"
	"github.com/chequelab/carteira/internal/gateway"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("identificador inválido: %s", arg)
	}
	return id, nil
}

func printMessage(resp gateway.MessageResponse) {
	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
}

func newBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banco",
		Short: "Gerencia bancos",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "listar",
		Short: "Lista os bancos cadastrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageBanks, domain.PermFullView); err != nil {
				return err
			}
			if err := a.data.RefreshBanks(ctx); err != nil {
				return err
			}
			for _, b := range a.data.Banks() {
				fmt.Printf("%4d  %-3s  %s\n", b.ID, b.Code, b.Name)
			}
			return nil
		},
	})

	var bankName, bankCode string
	create := &cobra.Command{
		Use:   "criar",
		Short: "Cadastra um banco",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageBanks); err != nil {
				return err
			}
			if err := domain.ValidateName(bankName); err != nil {
				return fmt.Errorf("informe o nome")
			}
			if err := domain.ValidateBankCode(bankCode); err != nil {
				return fmt.Errorf("código do banco deve ter de 1 a 3 dígitos")
			}

			var resp gateway.MessageResponse
			if err := a.gw.Post(ctx, gateway.RouteBanks, domain.Bank{Name: bankName, Code: bankCode}, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	create.Flags().StringVar(&bankName, "nome", "", "Nome do banco")
	create.Flags().StringVar(&bankCode, "codigo", "", "Código de compensação")
	create.MarkFlagRequired("nome")
	create.MarkFlagRequired("codigo")
	cmd.AddCommand(create)

	var updName, updCode string
	update := &cobra.Command{
		Use:   "editar <id>",
		Short: "Edita um banco",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageBanks); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Put(ctx, gateway.RouteBanks, id, domain.Bank{Name: updName, Code: updCode}, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	update.Flags().StringVar(&updName, "nome", "", "Nome do banco")
	update.Flags().StringVar(&updCode, "codigo", "", "Código de compensação")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "remover <id>",
		Short: "Remove um banco",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageBanks); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Delete(ctx, gateway.RouteBanks, id, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	})

	return cmd
}

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conta",
		Short: "Gerencia contas bancárias",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "listar",
		Short: "Lista as contas cadastradas",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageBankAccounts, domain.PermFullView); err != nil {
				return err
			}
			if err := a.data.RefreshAccounts(ctx); err != nil {
				return err
			}
			for _, acc := range a.data.Accounts() {
				status := "ativa"
				if !acc.Active {
					status = "inativa"
				}
				fmt.Printf("%4d  banco=%d  ag=%s  conta=%s  %s\n", acc.ID, acc.BankID, acc.Branch, acc.Number, status)
			}
			return nil
		},
	})

	var (
		accBankID int64
		accBranch string
		accNumber string
	)
	create := &cobra.Command{
		Use:   "criar",
		Short: "Cadastra uma conta bancária",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageBankAccounts); err != nil {
				return err
			}

			account := domain.BankAccount{BankID: accBankID, Branch: accBranch, Number: accNumber, Active: true}
			var resp gateway.MessageResponse
			if err := a.gw.Post(ctx, gateway.RouteAccounts, account, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	create.Flags().Int64Var(&accBankID, "banco", 0, "ID do banco")
	create.Flags().StringVar(&accBranch, "agencia", "", "Agência")
	create.Flags().StringVar(&accNumber, "numero", "", "Número da conta")
	create.MarkFlagRequired("banco")
	create.MarkFlagRequired("numero")
	cmd.AddCommand(create)

	var (
		updBankID int64
		updBranch string
		updNumber string
		updActive bool
	)
	update := &cobra.Command{
		Use:   "editar <id>",
		Short: "Edita uma conta bancária",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageBankAccounts); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			account := domain.BankAccount{BankID: updBankID, Branch: updBranch, Number: updNumber, Active: updActive}
			var resp gateway.MessageResponse
			if err := a.gw.Put(ctx, gateway.RouteAccounts, id, account, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	update.Flags().Int64Var(&updBankID, "banco", 0, "ID do banco")
	update.Flags().StringVar(&updBranch, "agencia", "", "Agência")
	update.Flags().StringVar(&updNumber, "numero", "", "Número da conta")
	update.Flags().BoolVar(&updActive, "ativa", true, "Conta ativa")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "remover <id>",
		Short: "Remove uma conta bancária",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageBankAccounts); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Delete(ctx, gateway.RouteAccounts, id, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	})

	return cmd
}

func newPartyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "responsavel",
		Short: "Gerencia responsáveis",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "listar",
		Short: "Lista os responsáveis cadastrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageParties, domain.PermFullView); err != nil {
				return err
			}
			if err := a.data.RefreshParties(ctx); err != nil {
				return err
			}
			for _, p := range a.data.Parties() {
				email := "-"
				if p.Email != nil {
					email = *p.Email
				}
				fmt.Printf("%4d  %-30s  %s\n", p.ID, p.Name, email)
			}
			return nil
		},
	})

	var partyName, partyEmail string
	create := &cobra.Command{
		Use:   "criar",
		Short: "Cadastra um responsável",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageParties); err != nil {
				return err
			}
			if err := domain.ValidateName(partyName); err != nil {
				return fmt.Errorf("informe o nome")
			}

			party := domain.ResponsibleParty{Name: partyName, Active: true}
			if partyEmail != "" {
				if err := domain.ValidateEmail(partyEmail); err != nil {
					return fmt.Errorf("e-mail inválido")
				}
				party.Email = &partyEmail
			}

			var resp gateway.MessageResponse
			if err := a.gw.Post(ctx, gateway.RouteParties, party, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	create.Flags().StringVar(&partyName, "nome", "", "Nome do responsável")
	create.Flags().StringVar(&partyEmail, "email", "", "E-mail (opcional)")
	create.MarkFlagRequired("nome")
	cmd.AddCommand(create)

	var updName, updEmail string
	var updActive bool
	update := &cobra.Command{
		Use:   "editar <id>",
		Short: "Edita um responsável",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageParties); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			party := domain.ResponsibleParty{Name: updName, Active: updActive}
			if updEmail != "" {
				party.Email = &updEmail
			}

			var resp gateway.MessageResponse
			if err := a.gw.Put(ctx, gateway.RouteParties, id, party, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	update.Flags().StringVar(&updName, "nome", "", "Nome do responsável")
	update.Flags().StringVar(&updEmail, "email", "", "E-mail")
	update.Flags().BoolVar(&updActive, "ativo", true, "Responsável ativo")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "remover <id>",
		Short: "Remove um responsável",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageParties); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Delete(ctx, gateway.RouteParties, id, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	})

	return cmd
}

func newAccessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acesso",
		Short: "Gerencia acessos",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "listar",
		Short: "Lista os acessos cadastrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageAccesses); err != nil {
				return err
			}
			if err := a.data.RefreshAccesses(ctx); err != nil {
				return err
			}
			for _, acc := range a.data.Accesses() {
				status := "ativo"
				if !acc.Active {
					status = "inativo"
				}
				fmt.Printf("%4d  %-30s  %s  %s  permissões=%d\n", acc.ID, acc.Name, acc.CPF, status, len(acc.Perms))
			}
			return nil
		},
	})

	var (
		accName     string
		accCPF      string
		accEmail    string
		accPassword string
	)
	create := &cobra.Command{
		Use:   "criar",
		Short: "Cadastra um acesso",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageAccesses); err != nil {
				return err
			}

			accCPF = domain.NormalizeCPF(accCPF)
			if err := domain.ValidateCPF(accCPF); err != nil {
				return fmt.Errorf("CPF deve conter 11 dígitos")
			}

			body := map[string]any{
				"nome":   accName,
				"cpf":    accCPF,
				"email":  accEmail,
				"senha":  accPassword,
				"status": true,
			}
			var resp gateway.MessageResponse
			if err := a.gw.Post(ctx, gateway.RouteAccesses, body, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	create.Flags().StringVar(&accName, "nome", "", "Nome")
	create.Flags().StringVar(&accCPF, "cpf", "", "CPF")
	create.Flags().StringVar(&accEmail, "email", "", "E-mail")
	create.Flags().StringVar(&accPassword, "senha", "", "Senha inicial")
	create.MarkFlagRequired("nome")
	create.MarkFlagRequired("cpf")
	create.MarkFlagRequired("senha")
	cmd.AddCommand(create)

	var (
		updAccName   string
		updAccEmail  string
		updAccActive bool
	)
	update := &cobra.Command{
		Use:   "editar <id>",
		Short: "Edita um acesso",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageAccesses); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			body := map[string]any{
				"nome":   updAccName,
				"email":  updAccEmail,
				"status": updAccActive,
			}
			var resp gateway.MessageResponse
			if err := a.gw.Put(ctx, gateway.RouteAccesses, id, body, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	update.Flags().StringVar(&updAccName, "nome", "", "Nome")
	update.Flags().StringVar(&updAccEmail, "email", "", "E-mail")
	update.Flags().BoolVar(&updAccActive, "ativo", true, "Acesso ativo")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "remover <id>",
		Short: "Remove um acesso",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageAccesses); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Delete(ctx, gateway.RouteAccesses, id, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	})

	return cmd
}

func newPermissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissao",
		Short: "Gerencia permissões de acessos",
	}

	var perms []string
	set := &cobra.Command{
		Use:   "definir <id-acesso>",
		Short: "Substitui o conjunto de permissões de um acesso",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManagePermissions); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			granted := make([]domain.Permission, 0, len(perms))
			for _, raw := range perms {
				p := domain.Permission(raw)
				if !p.IsValid() {
					return fmt.Errorf("permissão desconhecida: %s", raw)
				}
				granted = append(granted, p)
			}

			body := map[string]any{"permissoes": granted}
			var resp gateway.MessageResponse
			if err := a.gw.Put(ctx, gateway.RoutePermissions, id, body, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	set.Flags().StringSliceVar(&perms, "permissoes", nil, "Permissões concedidas (separadas por vírgula)")
	cmd.AddCommand(set)

	list := &cobra.Command{
		Use:   "disponiveis",
		Short: "Lista as permissões existentes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range domain.AllPermissions {
				fmt.Println(p)
			}
			return nil
		},
	}
	cmd.AddCommand(list)

	return cmd
}
