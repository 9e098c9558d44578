package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/job-board/internal/config"
	"github.com/iliyamo/job-board/internal/database"
	"github.com/iliyamo/job-board/internal/handler"
	"github.com/iliyamo/job-board/internal/logging"
	"github.com/iliyamo/job-board/internal/middleware"
	"github.com/iliyamo/job-board/internal/notify"
	"github.com/iliyamo/job-board/internal/repository"
	"github.com/iliyamo/job-board/internal/router"
	"github.com/iliyamo/job-board/internal/utils"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.WithError(err).Fatal("migrate database")
		}
		log.Info("database schema up to date")
	}

	users := repository.NewUserRepo(db)
	jobs := repository.NewJobRepo(db)
	apps := repository.NewApplicationRepo(db)
	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	dispatcher := notify.NewDispatcher(notify.LogNotifier{Log: log}, cfg.NotifyTimeout, log)

	rlCfg := config.LoadRateLimitConfig()
	var limiter echo.MiddlewareFunc
	if rlCfg.Enabled {
		rdb := config.NewRedisClient()
		if rdb == nil {
			log.Warn("redis unreachable, auth rate limiting disabled")
		} else {
			defer rdb.Close()
		}
		limiter = middleware.NewTokenBucket(rlCfg, rdb, log)
	}

	e := router.New(router.Deps{
		Log:         log,
		Tokens:      tokens,
		Auth:        handler.NewAuthHandler(users, tokens, cfg.BcryptCost, log),
		Jobs:        handler.NewJobHandler(jobs, log),
		Apps:        handler.NewApplicationHandler(apps, log),
		Admin:       handler.NewAdminHandler(apps, users, dispatcher, log),
		AuthLimiter: limiter,
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "driver": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := dispatcher.Wait(ctx); err != nil {
		log.WithError(err).Warn("pending notifications dropped")
	}
}
