// seed-head creates or updates the municipal head user used to review and
// resolve citizen reports.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-head
//
// Override the credentials with SEED_HEAD_USERNAME / SEED_HEAD_PASSWORD.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/civicsolver/civicsolver_backend/config"
	"github.com/civicsolver/civicsolver_backend/models"
	"github.com/civicsolver/civicsolver_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultHeadUsername = "civicHead"
	defaultHeadPassword = "C!vicHead"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := models.MigrateTable(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	username := os.Getenv("SEED_HEAD_USERNAME")
	if username == "" {
		username = defaultHeadUsername
	}
	password := os.Getenv("SEED_HEAD_PASSWORD")
	if password == "" {
		password = defaultHeadPassword
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Username: username,
			Password: hashedStr,
			Role:     models.UserRoleHead,
			IsActive: utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create head user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created head user %q (id=%d)\n", username, u.ID)
		return
	}

	updates := map[string]interface{}{
		"password":  hashedStr,
		"role":      models.UserRoleHead,
		"is_active": true,
	}
	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update head user: %v\n", err)
		os.Exit(1)
	}

	// drop any sessions minted under the old credentials
	config.ConnectRedisWithRetry()
	if config.GetRedisDB() != nil {
		_ = existing.DestroyAllSessions(ctx)
		_ = existing.RemoveInstanceRedis()
	}
	fmt.Printf("updated head user %q (id=%d)\n", username, existing.ID)
}
