// Package seed loads bootstrap categories and accounts into the store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

//go:embed default.yaml
var defaultData []byte

// Data is the seed file layout.
type Data struct {
	Categories []Category `yaml:"categories"`
	Users      []User     `yaml:"users"`
}

// Category is a seeded category.
type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
}

// User is a seeded account. Password is stored hashed.
type User struct {
	Name     string      `yaml:"name"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Role     domain.Role `yaml:"role"`
}

// Options tunes Apply.
type Options struct {
	BcryptCost int
	// SkipUsers applies categories only.
	SkipUsers bool
}

// Result counts what Apply created.
type Result struct {
	CategoriesCreated int
	UsersCreated      int
	UsersSkipped      bool
}

// UsersAllowed reports whether accounts from the seed at path may be
// created. The built-in data carries demo passwords, so it only creates
// accounts outside production.
func UsersAllowed(production bool, path string) bool {
	return !production || path != ""
}

// Load reads path, or the built-in data when path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Parse(defaultData)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates seed data.
func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Validate checks required fields and roles.
func (d *Data) Validate() error {
	var errs []error
	for i, c := range d.Categories {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: name is required", i))
		}
	}
	for i, u := range d.Users {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" || strings.TrimSpace(u.Name) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: name, email and password are required", i))
		}
		if !u.Role.Valid() {
			errs = append(errs, fmt.Errorf("users[%d]: invalid role %q", i, u.Role))
		}
	}
	return errors.Join(errs...)
}

// Apply creates missing categories (matched by name, case-insensitive) and
// missing users (matched by email) in one transaction. Existing records are
// left untouched, so Apply can run on every start.
func Apply(ctx context.Context, store repository.Store, data *Data, opts Options, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := Result{UsersSkipped: opts.SkipUsers && len(data.Users) > 0}
	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		existing, err := repos.Categories.List(ctx)
		if err != nil {
			return err
		}
		names := make(map[string]struct{}, len(existing))
		for _, c := range existing {
			names[strings.ToLower(c.Name)] = struct{}{}
		}
		for _, c := range data.Categories {
			key := strings.ToLower(strings.TrimSpace(c.Name))
			if _, ok := names[key]; ok {
				continue
			}
			color := c.Color
			if color == "" {
				color = domain.DefaultCategoryColor
			}
			category := &domain.Category{Name: strings.TrimSpace(c.Name), Description: c.Description, Color: color}
			if err := repos.Categories.Create(ctx, category); err != nil {
				return fmt.Errorf("create category %q: %w", c.Name, err)
			}
			names[key] = struct{}{}
			result.CategoriesCreated++
		}

		if opts.SkipUsers {
			return nil
		}
		for _, u := range data.Users {
			email := strings.ToLower(strings.TrimSpace(u.Email))
			if _, err := repos.Users.GetByEmail(ctx, email); err == nil {
				continue
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			hash, err := auth.HashPassword(u.Password, opts.BcryptCost)
			if err != nil {
				return err
			}
			user := &domain.User{Name: strings.TrimSpace(u.Name), Email: email, PasswordHash: hash, Role: u.Role}
			if err := repos.Users.Create(ctx, user); err != nil {
				return fmt.Errorf("create user %q: %w", email, err)
			}
			result.UsersCreated++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info("seed applied",
		zap.Int("categories_created", result.CategoriesCreated),
		zap.Int("users_created", result.UsersCreated),
		zap.Bool("users_skipped", result.UsersSkipped))
	return result, nil
}
