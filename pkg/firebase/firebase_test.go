package firebase

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewAuthClientRequiresCredentialsFile(t *testing.T) {
	ctx := context.Background()

	_, err := NewAuthClient(ctx, "", zap.NewNop())
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = NewAuthClient(ctx, filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = NewAuthClient(ctx, t.TempDir(), zap.NewNop())
	assert.ErrorContains(t, err, "is a directory")
}
