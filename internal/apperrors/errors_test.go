package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		kind Kind
	}{
		{ErrInvalidSession, KindUnauthorized},
		{ErrSelfFollow, KindValidation},
		{NotFound("post"), KindNotFound},
		{fmt.Errorf("demote: %w", ErrCannotRemoveLastAdmin), KindLastAdmin},
		{ErrRateLimited, KindRateLimited},
		{fmt.Errorf("boom"), KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, KindOf(tc.err), tc.err.Error())
	}
}

func TestPublicMessageHidesDetails(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "internal server error", PublicMessage(fmt.Errorf("pq: relation missing")))
	assert.Equal(t, "unauthorized", PublicMessage(ErrInvalidSession))
	assert.Equal(t, "post not found", PublicMessage(fmt.Errorf("like: %w", NotFound("post"))))
	assert.Equal(t, "cannot demote the last admin",
		PublicMessage(New(ErrCannotRemoveLastAdmin, "cannot demote the last admin")))
	assert.Equal(t, "cannot follow yourself", PublicMessage(ErrSelfFollow))
	assert.Equal(t, http.StatusTooManyRequests, KindRateLimited.Status())
}

func TestKindForStatus(t *testing.T) {
	t.Parallel()

	kind, ok := KindForStatus(http.StatusNotFound)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)

	_, ok = KindForStatus(http.StatusMethodNotAllowed)
	assert.False(t, ok)
}
