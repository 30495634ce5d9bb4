package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("worker")
	require.NoError(t, err)
	assert.Equal(t, RoleWorker, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestAllows(t *testing.T) {
	// admin subsumes worker
	assert.True(t, Allows(RoleAdmin, RoleWorker))
	assert.True(t, Allows(RoleAdmin, RoleAdmin))

	assert.True(t, Allows(RoleWorker, RoleWorker))
	assert.False(t, Allows(RoleWorker, RoleAdmin))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromCtx(context.Background())
	assert.False(t, ok)

	p := Principal{ID: "1", Username: "meera", Role: RoleAdmin}
	ctx := WithPrincipal(context.Background(), p)

	got, ok := FromCtx(ctx)
	require.True(t, ok)
	assert.Equal(t, p, got)
}
