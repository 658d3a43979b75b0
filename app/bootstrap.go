// app/bootstrap.go
package app

import (
	"context"
	"log"

	"toollend/db"
	"toollend/models"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin creates the first admin account from env config when
// the database has none. No-op once any admin exists.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: count admins: %v", err)
		return
	}
	if n > 0 {
		return // 已经有管理员，跳过
	}

	hash, salt, err := HashPassword(cfg.BootstrapPassword)
	if err != nil {
		log.Printf("bootstrap: hash password: %v", err)
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     cfg.BootstrapEmail,
		DisplayName:  cfg.BootstrapEmail,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsAdmin:      true,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Printf("bootstrap: create admin: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] No admin found, created admin account for %s", cfg.BootstrapEmail)
}
