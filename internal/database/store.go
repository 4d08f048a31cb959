package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mvp-tweet/internal/models"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrConflict is returned when a username or email is already taken.
	ErrConflict = errors.New("username or email already exists")
	// ErrNotFound is returned when a referenced user does not exist.
	ErrNotFound = errors.New("record not found")
)

// FeedPost is a post joined with its author's username.
type FeedPost struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CleanupResult summarises an administrative purge.
type CleanupResult struct {
	Usernames    []string
	DeletedPosts int64
	DeletedUsers int64
}

// Store persists accounts and posts.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// classify maps driver constraint failures onto the store's sentinel errors.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrConflict
		case sqlite3.ErrConstraintForeignKey:
			return ErrNotFound
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return nil
}

// CreateUser inserts a new account and returns its id.
// An empty email is stored as NULL.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (uint, error) {
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if email = strings.TrimSpace(email); email != "" {
		user.Email = &email
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if mapped := classify(err); mapped != nil {
			return 0, mapped
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return user.ID, nil
}

// GetUserByUsername returns the account with exactly this username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// CountUsers returns the number of registered accounts.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// CreatePost stores content for userID stamped with the current time.
// ErrNotFound means the user no longer exists.
func (s *Store) CreatePost(ctx context.Context, userID uint, content string) (uint, error) {
	post := models.Post{
		UserID:    userID,
		Content:   content,
		Timestamp: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		if mapped := classify(err); mapped != nil {
			return 0, mapped
		}
		return 0, fmt.Errorf("create post: %w", err)
	}
	return post.ID, nil
}

func (s *Store) feedQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("posts AS p").
		Select("p.id, u.username, p.content, p.timestamp").
		Joins("JOIN users AS u ON u.id = p.user_id").
		Order("p.timestamp DESC, p.id DESC")
}

// ListPosts returns every post, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]FeedPost, error) {
	posts := []FeedPost{}
	if err := s.feedQuery(ctx).Scan(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListPostsByUser returns the posts written by userID, newest first.
func (s *Store) ListPostsByUser(ctx context.Context, userID uint) ([]FeedPost, error) {
	posts := []FeedPost{}
	if err := s.feedQuery(ctx).Where("p.user_id = ?", userID).Scan(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts by user: %w", err)
	}
	return posts, nil
}

// ListUsernames returns all usernames in registration order.
func (s *Store) ListUsernames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Order("id ASC").
		Pluck("username", &names).Error; err != nil {
		return nil, fmt.Errorf("list usernames: %w", err)
	}
	return names, nil
}

// DeleteUsersWithoutEmail removes every account lacking an email, together
// with its posts, except the account named exempt. It runs in one transaction.
func (s *Store) DeleteUsersWithoutEmail(ctx context.Context, exempt string) (CleanupResult, error) {
	var result CleanupResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users []models.User
		if err := tx.Where("(email IS NULL OR email = '') AND username <> ?", exempt).
			Order("id ASC").
			Find(&users).Error; err != nil {
			return fmt.Errorf("find users: %w", err)
		}
		if len(users) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
			result.Usernames = append(result.Usernames, u.Username)
		}

		posts := tx.Where("user_id IN ?", ids).Delete(&models.Post{})
		if posts.Error != nil {
			return fmt.Errorf("delete posts: %w", posts.Error)
		}
		result.DeletedPosts = posts.RowsAffected

		deleted := tx.Where("id IN ?", ids).Delete(&models.User{})
		if deleted.Error != nil {
			return fmt.Errorf("delete users: %w", deleted.Error)
		}
		result.DeletedUsers = deleted.RowsAffected
		return nil
	})
	if err != nil {
		return CleanupResult{}, err
	}
	return result, nil
}
