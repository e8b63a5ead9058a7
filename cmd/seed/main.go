package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/config"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/repository"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/seed"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var sectorID int64

	flag.IntVar(&op, "op", 0, "operation (1: insert random users, 2: insert random workers for a sector, 3: seed the demo dataset)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Int64Var(&sectorID, "sector-id", 0, "target sector for random workers")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create the database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not dial, so ping to fail fast on a bad DSN
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to the database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if n <= 0 {
			slog.Error("invalid user count")
			return
		}
		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("failed to generate a random user", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("failed to insert user", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("users inserted", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("invalid worker count")
			return
		}
		if sectorID <= 0 {
			slog.Error("invalid sector id")
			return
		}

		if _, err := repo.GetSectorByID(sectorID); err != nil {
			slog.Error("failed to load sector", slog.String("error", err.Error()))
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			worker := utils.GenerateRandomWorker(sectorID, cfg.Email.UserDomain)
			worker.HiredAt = time.Now().AddDate(0, -6, 0)
			if err := repo.CreateWorker(worker); err != nil {
				slog.Error("failed to insert worker", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("workers inserted", slog.Int("count", n-cnt))
	case 3:
		seed.SeedDemoData(repo, n, cfg.Email.UserDomain)
	default:
		slog.Error("unknown operation")
	}
}
