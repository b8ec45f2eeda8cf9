package service

import (
	"context"
	"testing"
	"time"

	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
	identityrepo "github.com/aquameter/aquameter/internal/identity/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now(context.Context) time.Time { return c.t }

func newService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&identitydomain.Account{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &Service{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		clock: fixedClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		repo:  identityrepo.Provide(),
	}
}

func TestRegister(t *testing.T) {
	svc := newService(t)

	account, err := svc.Register(context.Background(), identitydomain.RegisterRequest{
		Name:  "Asha Rao",
		Email: "Asha@Example.com",
		Role:  identitydomain.RoleOwner,
	})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", account.Email)
	require.True(t, account.IsOwner())
	require.Nil(t, account.FlatID)
}

func TestRegisterInvalidRole(t *testing.T) {
	svc := newService(t)

	_, err := svc.Register(context.Background(), identitydomain.RegisterRequest{
		Name:  "Asha Rao",
		Email: "asha@example.com",
		Role:  "admin",
	})
	require.ErrorIs(t, err, identitydomain.ErrInvalidRole)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(t)

	req := identitydomain.RegisterRequest{
		Name:  "Asha Rao",
		Email: "asha@example.com",
		Role:  identitydomain.RoleTenant,
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	// Case differences in the address do not dodge the uniqueness check.
	req.Email = "ASHA@example.com"
	_, err = svc.Register(context.Background(), req)
	require.ErrorIs(t, err, identitydomain.ErrEmailTaken)
}

func TestRoleGuards(t *testing.T) {
	svc := newService(t)

	owner, err := svc.Register(context.Background(), identitydomain.RegisterRequest{
		Name:  "Asha Rao",
		Email: "owner@example.com",
		Role:  identitydomain.RoleOwner,
	})
	require.NoError(t, err)

	tenant, err := svc.Register(context.Background(), identitydomain.RegisterRequest{
		Name:  "Ravi Iyer",
		Email: "tenant@example.com",
		Role:  identitydomain.RoleTenant,
	})
	require.NoError(t, err)

	_, err = svc.RequireOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	_, err = svc.RequireOwner(context.Background(), tenant.ID)
	require.ErrorIs(t, err, identitydomain.ErrNotOwner)

	_, err = svc.RequireTenant(context.Background(), tenant.ID)
	require.NoError(t, err)
	_, err = svc.RequireTenant(context.Background(), owner.ID)
	require.ErrorIs(t, err, identitydomain.ErrNotTenant)
}

func TestGetUnknownAccount(t *testing.T) {
	svc := newService(t)

	_, err := svc.Get(context.Background(), snowflake.ID(42))
	require.ErrorIs(t, err, identitydomain.ErrAccountNotFound)
}
