package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

func newService() (user.Service, user.Repository) {
	repo := memory.NewUserRepository(memory.NewStore())
	return user.NewServiceWithCost(repo, bcrypt.MinCost), repo
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "secret1", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret1", u.Password, "密码必须加密存储")

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"用户名重复", "alice", "other@example.com", "secret1", user.ErrUsernameDuplicate},
		{"邮箱重复", "bob", "alice@example.com", "secret1", user.ErrEmailDuplicate},
		{"密码太短", "bob", "bob@example.com", "123", user.ErrWeakPassword},
		{"邮箱格式", "bob", "bob", "secret1", user.ErrInvalidEmail},
		{"用户名太短", "bo", "bob@example.com", "secret1", user.ErrInvalidUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password, "", "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()
	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret1", "Alice", user.RoleAdmin)
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "不暴露用户是否存在")

	t.Run("停用账号", func(t *testing.T) {
		hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
		require.NoError(t, err)
		disabled := user.NewUser("carol", "carol@example.com", string(hashed), "Carol", user.RoleUser)
		disabled.IsActive = false
		require.NoError(t, repo.Create(ctx, disabled))

		_, err = svc.Authenticate(ctx, "carol", "secret1")
		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	})
}

func TestPrincipal(t *testing.T) {
	assert.True(t, user.Principal{}.IsZero())
	assert.True(t, user.Principal{UserID: "1", Role: user.RoleAdmin}.IsAdmin())
	assert.False(t, user.Principal{UserID: "1", Role: user.RoleUser}.IsAdmin())
}
