// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB opens a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:vortex_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := config.OpenSQL("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a profile with the given username and role.
func CreateUser(t testing.TB, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Name:     username,
		Email:    username + "@example.com",
		Username: username,
		Role:     role,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

// CreatePost inserts a post by author. Successive posts get increasing
// creation times so ordering assertions are stable.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()
	p := &models.Post{
		AuthorID:  author.ID,
		Title:     title,
		Content:   title + " body",
		CreatedAt: time.Now().Add(time.Duration(dbSeq.Add(1)) * time.Millisecond),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
