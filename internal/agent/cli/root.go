// Package cli реализует командный интерфейс suchctl.
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд;
//   - загрузку сохранённой сессии из конфигурационного файла;
//   - выполнение команд и вывод результата пользователю.
//
// Точка входа пакета — функция Execute.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/suchauftrag/internal/agent/api"
	"github.com/IvanChernomyrdin/suchauftrag/internal/agent/config"
)

// DefaultServerURL — адрес сервера по умолчанию (локальный запуск).
const DefaultServerURL = "http://127.0.0.1:3000"

// App содержит состояние CLI-приложения, разделяемое между командами.
type App struct {
	// ServerURL — базовый URL сервера.
	ServerURL string
	// CredsPath — путь к файлу с сохранённой сессией.
	CredsPath string
	// Creds — загруженная сессия. Может быть nil до PersistentPreRunE.
	Creds *config.Credentials
}

// client создаёт API-клиент и подставляет сохранённую сессию, если она
// выдана этим же сервером и ещё не истекла.
func (a *App) client() *api.Client {
	c := NewAPIClient(a.ServerURL)
	if a.Creds.HasSession(a.serverURL(), Now()) {
		c.SetSession(a.Creds.Cookie())
	}
	return c
}

func (a *App) serverURL() string {
	return strings.TrimRight(a.ServerURL, "/")
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// buildVersion и buildDate используются командой version.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{ServerURL: DefaultServerURL}

	cmd := &cobra.Command{
		Use:   "suchctl",
		Short: "suchctl — клиент сервиса поисковых заказов",
		Long: `suchctl — консольный клиент сервиса поисковых заказов.

Команды:
  register  Регистрация нового пользователя
  login     Вход (сессия сохраняется локально)
  logout    Выход и удаление локальной сессии
  orders    Список и создание поисковых заказов
  version   Версия и дата сборки

Примеры:
  suchctl register --email alice@example.com
  suchctl login --email alice@example.com --password pw1
  suchctl orders create --plz 10115 --stadt Berlin --strasse Invalidenstr --hausnummer 1
  suchctl orders list
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.CredsPath == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				app.CredsPath = p
			}

			creds, err := config.Load(app.CredsPath)
			if err != nil {
				return err
			}
			app.Creds = creds
			return nil
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", DefaultServerURL, "server base URL")
	cmd.PersistentFlags().StringVar(&app.CredsPath, "credentials", "", "path to credentials file (default ~/.suchauftrag/credentials.json)")

	cmd.AddCommand(NewRegisterCmd(app))
	cmd.AddCommand(NewLoginCmd(app))
	cmd.AddCommand(NewLogoutCmd(app))
	cmd.AddCommand(NewOrdersCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute запускает обработку CLI-команд.
//
// При ошибке сообщение выводится в stderr, процесс завершается с кодом 1.
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
