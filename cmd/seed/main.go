package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"agrimarket-backend/config"
	"agrimarket-backend/database"
	"agrimarket-backend/internal/logger"
	"agrimarket-backend/internal/services"
)

var requiredTables = []string{"sessions", "notifications", "notification_preferences", "checkout_attempts"}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DatabaseURL, "sqlite database path")
	users := flag.String("user", "", "comma separated user IDs to seed demo notifications for")
	flag.Parse()

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	if err := run(*dbPath, splitUsers(*users), zapLogger); err != nil {
		zapLogger.Error("seeding failed", zap.Error(err))
		os.Exit(1)
	}
}

func splitUsers(raw string) []string {
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// run migrates the database, checks the schema and seeds each user
func run(dbPath string, userIDs []string, logger *zap.Logger) error {
	db, err := database.Initialize(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("setting up database", zap.String("db", dbPath))
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := verifySchema(db); err != nil {
		return err
	}

	notifications := services.NewNotificationService(db, logger)
	for _, userID := range userIDs {
		added, err := notifications.SeedDemo(userID)
		if err != nil {
			return fmt.Errorf("seed %s: %w", userID, err)
		}
		if added == 0 {
			logger.Info("user already has notifications, skipped", zap.String("userId", userID))
			continue
		}
		unread, err := notifications.UnreadCount(userID)
		if err != nil {
			return err
		}
		logger.Info("demo notifications seeded",
			zap.String("userId", userID),
			zap.Int("added", added),
			zap.Int("unread", unread))
	}

	if len(userIDs) == 0 {
		logger.Info("no users given, schema is ready")
	}
	return nil
}

func verifySchema(db *sql.DB) error {
	for _, table := range requiredTables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("table %s does not exist", table)
		}
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
	}
	return nil
}
