package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/suchauftrag/internal/agent/config"
)

// NewLoginCmd создаёт команду входа.
//
// Команда получает cookie сессии и сохраняет его в локальный файл,
// после чего команды orders работают от имени пользователя.
//
//	suchctl login --email alice@example.com --password pw1
func NewLoginCmd(app *App) *cobra.Command {
	var email string
	var pw passwordFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Вход (сессия сохраняется локально)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := pw.resolve(cmd)
			if err != nil {
				return err
			}

			c := app.client()
			ck, err := c.Login(email, password)
			if err != nil {
				return err
			}

			app.Creds.Remember(app.serverURL(), ck)
			if err := config.Save(app.CredsPath, app.Creds); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "login ok (session saved)")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email for login")
	pw.bind(cmd)
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewLogoutCmd создаёт команду выхода: сессия удаляется на сервере и локально.
// Локальная сессия удаляется даже если сервер недоступен.
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выход и удаление локальной сессии",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.client()
			logoutErr := c.Logout()

			app.Creds.Forget()
			if err := config.Save(app.CredsPath, app.Creds); err != nil {
				return err
			}
			if logoutErr != nil {
				return fmt.Errorf("local session removed, server logout failed: %w", logoutErr)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "logout ok")
			return nil
		},
	}
}
