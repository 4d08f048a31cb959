// Admin tool: one-shot maintenance against the tweet database.
// - mode=cleanup deletes users without an email (and their posts), except -exempt
// - mode=seed inserts the seed file accounts when the users table is empty
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"mvp-tweet/internal/config"
	"mvp-tweet/internal/database"
)

func main() {
	var mode, configPath, dbPath, exempt, seedFile string
	flag.StringVar(&mode, "mode", "cleanup", "admin mode: cleanup | seed")
	flag.StringVar(&configPath, "config", "", "path to config file (default ./config.yaml if present)")
	flag.StringVar(&dbPath, "db", "", "database file, overrides database.path")
	flag.StringVar(&exempt, "exempt", "thor", "username kept by cleanup even without an email")
	flag.StringVar(&seedFile, "seed-file", "", "seed YAML file, overrides seed.file")
	flag.Parse()

	cfg, err := config.Read(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if seedFile != "" {
		cfg.Seed.File = seedFile
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	store := database.NewStore(db)

	ctx := context.Background()
	start := time.Now()
	switch mode {
	case "cleanup":
		if err := runCleanup(ctx, store, exempt); err != nil {
			log.Fatalf("cleanup failed: %v", err)
		}
	case "seed":
		if err := runSeed(ctx, store, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	default:
		log.Fatalf("unknown mode: %s", mode)
	}
	log.Printf("done in %s", time.Since(start).Truncate(time.Millisecond))
}

func runCleanup(ctx context.Context, store *database.Store, exempt string) error {
	result, err := store.DeleteUsersWithoutEmail(ctx, exempt)
	if err != nil {
		return err
	}
	if len(result.Usernames) == 0 {
		log.Printf("no users to delete")
		return nil
	}
	log.Printf("users to delete: %s", strings.Join(result.Usernames, ", "))
	log.Printf("deleted %d posts", result.DeletedPosts)
	log.Printf("deleted %d users", result.DeletedUsers)
	return nil
}

func runSeed(ctx context.Context, store *database.Store, cfg *config.Config) error {
	if cfg.Seed.File == "" {
		log.Printf("no seed file configured, nothing to do")
		return nil
	}
	accounts, err := database.LoadSeedFile(cfg.Seed.File)
	if err != nil {
		return err
	}
	n, err := database.SeedIfEmpty(ctx, store, accounts, cfg.Security.BcryptCost)
	if err != nil {
		return err
	}
	log.Printf("seeded %d accounts", n)
	return nil
}
