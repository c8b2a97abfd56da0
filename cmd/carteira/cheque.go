package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chequelab/carteira/internal/domain"
	"github.com/chequelab/carteira/internal/gateway"
)

const dateLayout = "2006-01-02"

// defaultFilter scopes the check list to today's issue date, the same window
// the app opens with.
func defaultFilter() domain.DateRange {
	now := time.Now()
	return domain.DateRange{Start: now, End: now, Field: domain.FilterByIssueDate}
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("data inválida: %s (use AAAA-MM-DD)", value)
	}
	return parsed, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// normalizeSearchQuery undoes the deep-link encoding: an optional "pesquisa-"
// prefix and underscores standing in for spaces.
func normalizeSearchQuery(query string) string {
	query = strings.TrimPrefix(query, "pesquisa-")
	return strings.ReplaceAll(query, "_", " ")
}

func formatValue(v decimal.Decimal) string {
	return "R$ " + v.StringFixed(2)
}

func formatCheck(c *domain.Check) string {
	due := "-"
	if c.DueAt != nil {
		due = c.DueAt.Format(dateLayout)
	}
	status := string(c.Status)
	if status == "" {
		status = "sem status"
	}
	return fmt.Sprintf("%4d  nº %-10s  %-10s  %-9s  %-8s  emissão=%s  vencimento=%s",
		c.ID, c.Number, formatValue(c.Value), string(c.Operation), status,
		c.IssuedAt.Format(dateLayout), due)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cheque",
		Short: "Gerencia cheques",
	}

	var (
		start  string
		end    string
		field  string
		search string
	)
	list := &cobra.Command{
		Use:   "listar",
		Short: "Lista cheques no período",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageChecks, domain.PermFullView); err != nil {
				return err
			}

			filter := defaultFilter()
			if start != "" {
				if filter.Start, err = parseDate(start); err != nil {
					return err
				}
			}
			if end != "" {
				if filter.End, err = parseDate(end); err != nil {
					return err
				}
			}
			if field != "" {
				f := domain.DateField(field)
				if !f.IsValid() {
					return fmt.Errorf("filtro inválido: %s (use emissao ou vencimento)", field)
				}
				filter.Field = f
			}

			// Search resolves party and account references, so the reference
			// collections come along with the checks.
			if err := a.data.RefreshParties(ctx); err != nil {
				return err
			}
			if err := a.data.RefreshAccounts(ctx); err != nil {
				return err
			}
			if err := a.data.SetFilter(ctx, filter); err != nil {
				return err
			}

			checks := a.data.Checks()
			if search != "" {
				checks = a.data.Search(normalizeSearchQuery(search))
			}

			for _, c := range checks {
				fmt.Println(formatCheck(c))
			}
			fmt.Printf("%d cheque(s)\n", len(checks))
			return nil
		},
	}
	list.Flags().StringVar(&start, "inicio", "", "Início do período (AAAA-MM-DD)")
	list.Flags().StringVar(&end, "fim", "", "Fim do período (AAAA-MM-DD)")
	list.Flags().StringVar(&field, "filtro", "", "Campo de data: emissao ou vencimento")
	list.Flags().StringVar(&search, "pesquisa", "", "Pesquisa livre sobre os cheques do período")
	cmd.AddCommand(list)

	var (
		accountID int64
		partyID   int64
		operation string
		number    string
		rawValue  string
		issued    string
		due       string
		paid      string
		recipient string
		descr     string
		returned  bool
	)
	create := &cobra.Command{
		Use:   "criar",
		Short: "Cadastra um cheque",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageChecks); err != nil {
				return err
			}

			check, err := buildCheck(accountID, partyID, operation, number, rawValue, issued, due, paid, recipient, descr, returned)
			if err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Post(ctx, gateway.RouteChecks, check, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	addCheckFlags(create, &accountID, &partyID, &operation, &number, &rawValue, &issued, &due, &paid, &recipient, &descr, &returned)
	create.MarkFlagRequired("conta")
	create.MarkFlagRequired("responsavel")
	create.MarkFlagRequired("operacao")
	create.MarkFlagRequired("numero")
	create.MarkFlagRequired("valor")
	create.MarkFlagRequired("emissao")
	cmd.AddCommand(create)

	update := &cobra.Command{
		Use:   "editar <id>",
		Short: "Edita um cheque",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageChecks); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			check, err := buildCheck(accountID, partyID, operation, number, rawValue, issued, due, paid, recipient, descr, returned)
			if err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Put(ctx, gateway.RouteChecks, id, check, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	}
	addCheckFlags(update, &accountID, &partyID, &operation, &number, &rawValue, &issued, &due, &paid, &recipient, &descr, &returned)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "remover <id>",
		Short: "Remove um cheque",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageChecks); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var resp gateway.MessageResponse
			if err := a.gw.Delete(ctx, gateway.RouteChecks, id, &resp); err != nil {
				return err
			}
			printMessage(resp)
			return nil
		},
	})

	return cmd
}

func addCheckFlags(cmd *cobra.Command, accountID, partyID *int64, operation, number, rawValue, issued, due, paid, recipient, descr *string, returned *bool) {
	cmd.Flags().Int64Var(accountID, "conta", 0, "ID da conta bancária")
	cmd.Flags().Int64Var(partyID, "responsavel", 0, "ID do responsável")
	cmd.Flags().StringVar(operation, "operacao", "", "Operação: a_pagar ou a_receber")
	cmd.Flags().StringVar(number, "numero", "", "Número do cheque")
	cmd.Flags().StringVar(rawValue, "valor", "", "Valor do cheque")
	cmd.Flags().StringVar(issued, "emissao", "", "Data de emissão (AAAA-MM-DD)")
	cmd.Flags().StringVar(due, "vencimento", "", "Data de vencimento (AAAA-MM-DD)")
	cmd.Flags().StringVar(paid, "pagamento", "", "Data de pagamento (AAAA-MM-DD)")
	cmd.Flags().StringVar(recipient, "destinatario", "", "Destinatário (opcional)")
	cmd.Flags().StringVar(descr, "descricao", "", "Descrição (opcional)")
	cmd.Flags().BoolVar(returned, "devolvido", false, "Marca o cheque como devolvido")
}

// buildCheck assembles and validates a check from command flags. The status
// is derived from the due and payment dates; devolvido overrides it, since a
// bounced check is only ever flagged manually.
func buildCheck(accountID, partyID int64, operation, number, rawValue, issued, due, paid, recipient, descr string, returned bool) (*domain.Check, error) {
	value, err := decimal.NewFromString(strings.ReplaceAll(rawValue, ",", "."))
	if err != nil {
		return nil, fmt.Errorf("valor inválido: %s", rawValue)
	}

	issuedAt, err := parseDate(issued)
	if err != nil {
		return nil, err
	}
	dueAt, err := parseOptionalDate(due)
	if err != nil {
		return nil, err
	}
	paidAt, err := parseOptionalDate(paid)
	if err != nil {
		return nil, err
	}

	status := domain.DeriveStatus(dueAt, paidAt, time.Now())
	if returned {
		status = domain.StatusReturned
	}
	if status == domain.StatusUnset {
		return nil, fmt.Errorf("informe o vencimento ou o pagamento para definir o status")
	}

	check := &domain.Check{
		BankAccountID: accountID,
		PartyID:       partyID,
		Operation:     domain.CheckOperation(operation),
		Number:        number,
		Value:         value,
		IssuedAt:      issuedAt,
		DueAt:         dueAt,
		PaidAt:        paidAt,
		Status:        status,
	}
	if recipient != "" {
		check.Recipient = &recipient
	}
	if descr != "" {
		check.Description = &descr
	}

	if err := check.Validate(); err != nil {
		return nil, err
	}
	return check, nil
}

func newDashboardCmd() *cobra.Command {
	var (
		start string
		end   string
		field string
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Resumo dos cheques no período",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requirePerm(ctx, domain.PermManageChecks, domain.PermFullView); err != nil {
				return err
			}

			filter := defaultFilter()
			if start != "" {
				if filter.Start, err = parseDate(start); err != nil {
					return err
				}
			}
			if end != "" {
				if filter.End, err = parseDate(end); err != nil {
					return err
				}
			}
			if field != "" {
				f := domain.DateField(field)
				if !f.IsValid() {
					return fmt.Errorf("filtro inválido: %s (use emissao ou vencimento)", field)
				}
				filter.Field = f
			}

			if err := a.data.SetFilter(ctx, filter); err != nil {
				return err
			}

			summary := a.data.Summary()
			fmt.Printf("Período: %s a %s (%s)\n\n",
				filter.Start.Format(dateLayout), filter.End.Format(dateLayout), filter.Field)
			fmt.Printf("A pagar:   %3d  %s\n", summary.PayableCount, formatValue(summary.PayableTotal))
			fmt.Printf("A receber: %3d  %s\n", summary.ReceivableCount, formatValue(summary.ReceivableTotal))
			fmt.Printf("Saldo:          %s\n\n", formatValue(summary.Balance()))

			for _, status := range []domain.CheckStatus{
				domain.StatusUpcoming, domain.StatusOverdue, domain.StatusPaid, domain.StatusReturned,
			} {
				bucket, ok := summary.ByStatus[status]
				if !ok {
					continue
				}
				fmt.Printf("%-10s %3d  %s\n", status, bucket.Count, formatValue(bucket.Total))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "inicio", "", "Início do período (AAAA-MM-DD)")
	cmd.Flags().StringVar(&end, "fim", "", "Fim do período (AAAA-MM-DD)")
	cmd.Flags().StringVar(&field, "filtro", "", "Campo de data: emissao ou vencimento")

	return cmd
}
