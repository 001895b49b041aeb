// @title           Suchauftrag API
// @version         1.0
// @description     Registration, cookie sessions and per-user search orders.

// @contact.name   Ivan Chernomyrdin
// @contact.url    https://github.com/IvanChernomyrdin

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
// @schemes http https
//
// Package main содержит точку входа серверного приложения suchauftrag.
//
// Пакет отвечает за инициализацию и жизненный цикл HTTP(S)-сервера, а именно:
//   - загрузку переменных окружения из файла .env (если он присутствует);
//   - загрузку конфигурации сервера из файла ./configs/server.yaml;
//   - открытие пула соединений с базой, миграции и, при необходимости, Redis;
//   - создание репозиториев, сервисов, middleware и HTTP-обработчиков;
//   - периодическую очистку истёкших сессий;
//   - корректное (graceful) завершение работы по SIGINT, SIGTERM, SIGQUIT.
//
// Пакет не содержит бизнес-логики и не предназначен для unit-тестирования.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/api"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/config"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/crypto"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/middleware"
	h "github.com/IvanChernomyrdin/suchauftrag/internal/server/net/http"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/repository"
	"github.com/IvanChernomyrdin/suchauftrag/internal/server/service"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/logger"
	"github.com/IvanChernomyrdin/suchauftrag/web"

	_ "github.com/IvanChernomyrdin/suchauftrag/swagger/docs"
)

func main() {
	boot := logger.NewHTTPLogger().Logger.Sugar()

	if err := godotenv.Load(); err != nil {
		boot.Warnf("no .env file loaded, error: %v", err)
	}

	cfg, err := config.Load("./configs/server.yaml")
	if err != nil {
		boot.Fatal(err)
	}

	httpLogger := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Stdout: cfg.Log.Stdout,
	})
	defer httpLogger.Sync()
	sugar := httpLogger.Logger.Sugar()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	// подключаем базу данных
	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		sugar.Fatal(err)
	}
	// делаем отложенное закрытие бд
	defer db.Close()

	if cfg.Migrations.Enabled {
		if err := config.Migrate(db, cfg.Migrations.Path); err != nil {
			sugar.Fatal(err)
		}
	}

	// создаём репы
	repoOpts := []repository.Option{repository.WithQueryTimeout(cfg.DB.QueryTimeout)}
	usersRepo := repository.NewUsersRepository(db, repoOpts...)
	ordersRepo := repository.NewOrdersRepository(db, repoOpts...)

	health := map[string]service.HealthRepo{"postgres": usersRepo}

	var sessionsRepo service.SessionsRepo
	switch cfg.Auth.Sessions.Store {
	case "redis":
		rdb, err := config.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			sugar.Fatal(err)
		}
		defer rdb.Close()

		redisSessions := repository.NewRedisSessionsRepository(rdb)
		sessionsRepo = redisSessions
		health["redis"] = redisSessions
	default:
		sessionsRepo = repository.NewSessionsRepository(db, repoOpts...)
	}

	// складываем в репозиторий
	repos := service.Repositories{
		Users:    usersRepo,
		Sessions: sessionsRepo,
		Orders:   ordersRepo,
		Health:   health,
	}
	// создаём сервис
	svc := service.NewServices(repos, cfg)

	cookie := middleware.SessionCookie{
		Name:   cfg.Auth.CookieName,
		Codec:  crypto.CookieCodec{Issuer: cfg.Auth.Issuer, SigningKey: cfg.Auth.SessionSecret},
		TTL:    svc.Auth.TTL(),
		Secure: cfg.IsProduction(),
	}
	// создаём хандлер
	handler := api.NewHandler(svc, httpLogger, cookie, web.Views())

	routerOpts := h.Options{
		Static:       web.Static(),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}
	if cfg.Observability.Metrics.Enabled {
		routerOpts.MetricsPath = cfg.Observability.Metrics.Path
	}
	// создаём роутер
	router := h.NewRouter(handler, routerOpts)
	//создаём сервер
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		sugar.Infof("server started on %s (env=%s, sessions=%s)", addr, cfg.Env, cfg.Auth.Sessions.Store)

		var err error
		if cfg.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// чистим истёкшие сессии (redis удаляет их сам по TTL)
	if cfg.Auth.Sessions.Store == "db" {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.Auth.Sessions.CleanupInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					n, err := svc.Auth.SweepExpired(ctx)
					if err != nil {
						sugar.Warnw("session cleanup failed", "error", err)
						continue
					}
					if n > 0 {
						sugar.Infow("expired sessions removed", "count", n)
					}
				}
			}
		})
	}

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		sugar.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	// ожидание и единная обработка ошибок
	if err := g.Wait(); err != nil {
		sugar.Errorf("server stopped with error: %v", err)
		return
	}
	sugar.Info("server gracefully stopped")
}
