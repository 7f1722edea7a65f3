package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/user"
	"github.com/trezcool/lonesystem/storage/database/sqlxrepos"
	"github.com/trezcool/lonesystem/tests"
)

func TestService(t *testing.T) {
	db := testutil.PrepareDB(t)
	svc := user.NewService(sqlxrepos.NewUserRepository(db))
	ctx := context.Background()

	admin, err := svc.Create(ctx, user.NewUser{
		Name:     "Admin",
		Username: "admin",
		Email:    "admin@firma.se",
		Password: "Xk9#mTq2vL",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, admin.ID)
	assert.True(t, admin.IsActive)
	assert.NoError(t, admin.CheckPassword("Xk9#mTq2vL"))

	t.Run("uniqueness", func(t *testing.T) {
		tests := []struct {
			name      string
			nu        user.NewUser
			wantErr   error
			wantField string
		}{
			{
				name:      "username taken",
				nu:        user.NewUser{Name: "Other", Username: "admin", Email: "other@firma.se", Password: "Xk9#mTq2vL"},
				wantErr:   user.ErrUsernameExists,
				wantField: "username",
			},
			{
				name:      "email taken",
				nu:        user.NewUser{Name: "Other", Username: "other", Email: "admin@firma.se", Password: "Xk9#mTq2vL"},
				wantErr:   user.ErrEmailExists,
				wantField: "email",
			},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, tc.nu)
				var vErr *core.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tc.wantErr, vErr.Err)
				require.Len(t, vErr.Fields, 1)
				assert.Equal(t, tc.wantField, vErr.Fields[0].Field)
			})
		}
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := svc.GetByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "admin", got.Username)

		got, err = svc.GetByUsernameOrEmail(ctx, " ADMIN@firma.se ")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, got.ID)

		_, err = svc.GetByID(ctx, "not-a-uuid")
		assert.True(t, core.IsNotFound(err))
		_, err = svc.GetByUsernameOrEmail(ctx, "nobody")
		assert.True(t, core.IsNotFound(err))

		users, err := svc.QueryAll(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("set password and last login", func(t *testing.T) {
		usr, err := svc.SetPassword(ctx, admin, user.SetUserPassword{Password: "Nq4$wZr8pK"})
		require.NoError(t, err)
		assert.True(t, usr.UpdatedAt.Valid)

		usr, err = svc.SetLastLogin(ctx, usr)
		require.NoError(t, err)
		assert.True(t, usr.LastLogin.Valid)

		got, err := svc.GetByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.NoError(t, got.CheckPassword("Nq4$wZr8pK"))
		assert.Error(t, got.CheckPassword("Xk9#mTq2vL"))
		assert.True(t, got.LastLogin.Valid)
	})
}
