package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

var errNotLoggedIn = errors.New("not logged in: run suchctl login")

// NewOrdersCmd создаёт группу команд для поисковых заказов.
func NewOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Поисковые заказы текущего пользователя",
	}
	cmd.AddCommand(newOrdersListCmd(app))
	cmd.AddCommand(newOrdersCreateCmd(app))
	return cmd
}

func newOrdersListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список заказов (новые первыми)",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := app.client().ListOrders()
			if errors.Is(err, serr.ErrUnauthorized) {
				return errNotLoggedIn
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(orders)
			}

			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no orders yet")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPLZ\tSTADT\tSTRASSE\tHAUSNUMMER\tCREATED")
			for _, o := range orders {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					o.ID, o.Address.PostalCode, o.Address.City, o.Address.Street, o.Address.HouseNumber,
					o.CreatedAt.Local().Format("02.01.2006 15:04"),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newOrdersCreateCmd(app *App) *cobra.Command {
	var addr models.Address

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать поисковый заказ",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.client().CreateOrder(addr)
			if errors.Is(err, serr.ErrUnauthorized) {
				return errNotLoggedIn
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "order created")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr.PostalCode, "plz", "", "postal code")
	cmd.Flags().StringVar(&addr.City, "stadt", "", "city")
	cmd.Flags().StringVar(&addr.Street, "strasse", "", "street")
	cmd.Flags().StringVar(&addr.HouseNumber, "hausnummer", "", "house number")
	for _, name := range []string{"plz", "stadt", "strasse", "hausnummer"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
