package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegisterCmd создаёт команду регистрации нового пользователя.
//
//	suchctl register --email alice@example.com --password pw1
//
// Без --password пароль спрашивается в терминале.
func NewRegisterCmd(app *App) *cobra.Command {
	var email string
	var pw passwordFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Регистрация нового пользователя",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := pw.resolve(cmd)
			if err != nil {
				return err
			}

			if err := app.client().Register(email, password); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "registered, now run: suchctl login --email", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email for registration")
	pw.bind(cmd)
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
