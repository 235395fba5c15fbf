// Command makeadmin promotes an existing account to ADMIN.
//
//	go run ./cmd/makeadmin -email someone@example.com
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/anjiri1684/tutor_marketplace/database"
	"github.com/anjiri1684/tutor_marketplace/logger"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "email of the account to promote")
	flag.Parse()
	if *email == "" {
		log.Fatal("-email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("connect", zap.Error(err))
	}

	address := strings.ToLower(strings.TrimSpace(*email))
	err = repository.NewStore(db).Users().UpdateRole(context.Background(), address, models.RoleAdmin)
	if errors.Is(err, repository.ErrNotFound) {
		zlog.Fatal("no user with that email", zap.String("email", address))
	}
	if err != nil {
		zlog.Fatal("promote user", zap.Error(err))
	}
	zlog.Info("user promoted to admin", zap.String("email", address))
}
