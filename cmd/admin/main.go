package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/edupreneurx/submissions-api/internal/repository"
	"github.com/edupreneurx/submissions-api/internal/service"
	"github.com/edupreneurx/submissions-api/pkg/config"
	"github.com/edupreneurx/submissions-api/pkg/database"
	"github.com/edupreneurx/submissions-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	authSvc := service.NewAuthService(repository.NewAdminUserRepository(db), nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	cli := &commandLine{auth: authSvc, out: os.Stdout}
	if err := cli.run(context.Background(), os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
