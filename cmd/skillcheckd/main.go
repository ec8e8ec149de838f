package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/skillcheck/internal/api/http"
	auth "github.com/mind-engage/skillcheck/internal/auth/middleware"
	"github.com/mind-engage/skillcheck/internal/config"
	"github.com/mind-engage/skillcheck/internal/db"
	"github.com/mind-engage/skillcheck/internal/quiz"
	"github.com/mind-engage/skillcheck/internal/report"
	syncx "github.com/mind-engage/skillcheck/internal/sync"
	"github.com/mind-engage/skillcheck/internal/users"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver := db.Driver(cfg.DBDriver)
	dbh, err := db.Open(ctx, driver, cfg.DBDSN, db.Options{MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	store := quiz.NewSQLStore(dbh, driver)
	us := users.NewStore(dbh, cfg.BcryptCost)
	if created, err := us.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	} else if created {
		log.Printf("created admin account %s", cfg.AdminEmail)
	}

	router := api.NewRouter(api.Deps{
		Auth: auth.NewAuthService(auth.Options{
			AccessSecret:  cfg.JWTSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTokenTTL,
			RefreshTTL:    cfg.RefreshTokenTTL,
			CookieSecure:  cfg.CookieSecure,
		}),
		Users:       us,
		Catalog:     store,
		Options:     quiz.NewOptionService(store, store),
		Engine:      quiz.NewEngine(store, nil),
		Reports:     report.NewReader(dbh, nil),
		Events:      syncx.NewEventRepo(dbh),
		DB:          dbh,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
		errc <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
		}
	case sig := <-stop:
		log.Printf("shutting down (%s)", sig)
		sctx, scancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer scancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
