package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careclinic/care-scheduling/internal/cli"
	"github.com/careclinic/care-scheduling/internal/config"
	"github.com/careclinic/care-scheduling/internal/db"
	redisclient "github.com/careclinic/care-scheduling/internal/redis"
	"github.com/careclinic/care-scheduling/internal/scheduling"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()

	if err := db.EnsureSchema(rootCtx, pgPool); err != nil {
		log.Fatalf("schema error: %v", err)
	}

	// The slot lock only matters when several sessions share the store; the
	// terminal app still takes it so that it can run alongside the API server.
	var locker redisclient.Locker = redisclient.NoopLocker{}
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Printf("redis unavailable, booking without slot locks: %v", err)
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		locker = redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	}

	repo := scheduling.NewPgRepository(pgPool)
	svc := scheduling.NewService(repo, locker)

	prompter := cli.NewPrompter(os.Stdin, os.Stdout)
	app := cli.NewApp(svc, prompter, cfg.AdminSecret)

	if err := app.Run(rootCtx); err != nil && !errors.Is(err, io.EOF) {
		log.Fatalf("terminal session error: %v", err)
	}
}
