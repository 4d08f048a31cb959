package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvp-tweet/internal/util"

	"gopkg.in/yaml.v3"
)

// SeedAccount is one demo account declared in the seed file.
type SeedAccount struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type seedFile struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// LoadSeedFile reads demo accounts from a YAML document of the form
//
//	accounts:
//	  - username: admin
//	    email: admin@example.com
//	    password: change-me
func LoadSeedFile(path string) ([]SeedAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	for i, a := range f.Accounts {
		if strings.TrimSpace(a.Username) == "" || strings.TrimSpace(a.Email) == "" || a.Password == "" {
			return nil, fmt.Errorf("seed account #%d: username, email and password are required", i+1)
		}
	}
	return f.Accounts, nil
}

// SeedIfEmpty inserts accounts only when no user exists yet.
// It reports how many accounts were created.
func SeedIfEmpty(ctx context.Context, s *Store, accounts []SeedAccount, bcryptCost int) (int, error) {
	if len(accounts) == 0 {
		return 0, nil
	}

	count, err := s.CountUsers(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, a := range accounts {
		hash, err := util.HashPassword(a.Password, bcryptCost)
		if err != nil {
			return created, fmt.Errorf("hash seed password for %s: %w", a.Username, err)
		}
		if _, err := s.CreateUser(ctx, strings.TrimSpace(a.Username), a.Email, hash); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return created, fmt.Errorf("seed %s: %w", a.Username, err)
		}
		created++
	}
	return created, nil
}
