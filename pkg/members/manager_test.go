package members

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librakeep/librakeep/pkg/config"
	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/store"
	"github.com/librakeep/librakeep/pkg/types"
)

func setupTestManager(t *testing.T) (*Manager, *AuthService) {
	t.Helper()

	s, err := store.Open(config.DatabaseConfig{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "members.db"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(&Member{}))
	t.Cleanup(func() { _ = s.Close() })

	repo := NewRepository(s.DB())
	return NewManager(repo), NewAuthService(repo, "test-secret-key-for-testing", time.Hour)
}

func registerMember(t *testing.T, auth *AuthService, email string) *Member {
	t.Helper()
	result, err := auth.Register(RegisterParams{Name: "Test Member", Email: email, Password: "secret123"})
	require.NoError(t, err)
	return result.Member
}

func TestManager_GetMember(t *testing.T) {
	mgr, auth := setupTestManager(t)
	created := registerMember(t, auth, "ada@example.com")

	member, err := mgr.GetMember(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, member.ID)
	assert.Empty(t, member.Password)
}

func TestManager_GetMember_NotFound(t *testing.T) {
	mgr, _ := setupTestManager(t)

	_, err := mgr.GetMember("missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestManager_ListMembers(t *testing.T) {
	mgr, auth := setupTestManager(t)
	for i := 0; i < 15; i++ {
		registerMember(t, auth, fmt.Sprintf("member%d@example.com", i))
	}

	members, info, err := mgr.ListMembers(types.PageParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, members, 5)
	assert.Equal(t, int64(15), info.Total)
	assert.Equal(t, 2, info.TotalPages)
	assert.False(t, info.HasNextPage)
}

func TestManager_UpdateName(t *testing.T) {
	mgr, auth := setupTestManager(t)
	created := registerMember(t, auth, "ada@example.com")

	updated, err := mgr.UpdateName(created.ID, "Ada King")
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.Name)

	_, err = mgr.UpdateName(created.ID, "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestManager_UpdateRole(t *testing.T) {
	mgr, auth := setupTestManager(t)
	created := registerMember(t, auth, "ada@example.com")

	updated, err := mgr.UpdateRole(created.ID, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, updated.Role)

	_, err = mgr.UpdateRole(created.ID, "ROOT")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestManager_DeleteMember(t *testing.T) {
	mgr, auth := setupTestManager(t)
	created := registerMember(t, auth, "ada@example.com")

	require.NoError(t, mgr.DeleteMember(created.ID))

	_, err := mgr.GetMember(created.ID)
	assert.True(t, errors.IsNotFound(err))

	err = mgr.DeleteMember(created.ID)
	assert.True(t, errors.IsNotFound(err))
}
