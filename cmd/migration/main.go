package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

func main() {
	logger := logging.New(logging.Options{Level: logging.LevelInfo, Service: "budget-gm-migration"})
	defer func() { _ = logger.Sync() }()

	cmd, err := parseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(2)
	}

	if err := run(cmd, logger); err != nil {
		logger.Error("migration failed", "command", cmd.name, "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cmd command, logger *logging.Logger) error {
	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return errors.New("DB_URL is required")
	}
	dbURL = withPreparedBinaryDisabled(dbURL, envBool("DB_DISABLE_PREPARED_BINARY_RESULT"))

	dir, err := resolveMigrationsDir(os.Getenv("MIGRATIONS_DIR"))
	if err != nil {
		return err
	}
	sourceURL := "file://" + filepath.ToSlash(dir)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	switch cmd.name {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-cmd.steps)
	case "goto":
		err = m.Migrate(cmd.target)
	case "force":
		err = m.Force(cmd.version)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			logger.Info("migration version", "version", "none", "dirty", false)
			return nil
		}
		if verr != nil {
			return fmt.Errorf("read version: %w", verr)
		}
		logger.Info("migration version", "version", version, "dirty", dirty)
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes", "command", cmd.name)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("migration applied", "command", cmd.name, "source", sourceURL)
	return nil
}

func resolveMigrationsDir(override string) (string, error) {
	candidates := []string{strings.TrimSpace(override), "./db/migrations", "/app/db/migrations"}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", errors.New("migration directory not found (checked MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}

func withPreparedBinaryDisabled(raw string, disable bool) string {
	if !disable {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|goto <version>|force <version>|version>\n", name)
}
