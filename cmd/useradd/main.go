// cmd/useradd/main.go
//
// One-shot admin-user provisioning:
//
//	go run ./cmd/useradd -email you@example.com -password s3cret
//
// Hashes the password with Argon2id and upserts the users row.  Reads the
// same configuration tree as cmd/web.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/atelier-cms/atelier/internal/auth"
	"github.com/atelier-cms/atelier/internal/config"
	"github.com/atelier-cms/atelier/internal/database"
	"github.com/atelier-cms/atelier/internal/vault"
)

func main() {
	email := flag.String("email", "", "admin e-mail address")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	z, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(z)

	ctx := context.Background()
	var vc *vault.Client
	if os.Getenv("VAULT_ADDR") != "" {
		var err error
		if vc, err = vault.New(ctx, z.Sugar().Infof); err != nil {
			log.Fatalf("vault client: %v", err)
		}
	}
	cfg, err := config.Load(ctx, vc)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Open(cfg.Database.FullDSN())
	if err != nil {
		log.Fatalf("connect DB: %v", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	if _, err := db.ExecContext(ctx, `
	    INSERT INTO users (email, password) VALUES (?, ?)
	    ON DUPLICATE KEY UPDATE password = VALUES(password)`,
		*email, hash); err != nil {
		log.Fatalf("upsert user: %v", err)
	}
	log.Printf("admin user %s ready", *email)
}
