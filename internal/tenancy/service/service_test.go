package service

import (
	"context"
	"testing"
	"time"

	"github.com/aquameter/aquameter/internal/eventbus"
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	flatrepo "github.com/aquameter/aquameter/internal/flat/repository"
	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
	identityrepo "github.com/aquameter/aquameter/internal/identity/repository"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	propertyrepo "github.com/aquameter/aquameter/internal/property/repository"
	tenancydomain "github.com/aquameter/aquameter/internal/tenancy/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now(context.Context) time.Time { return c.t }

type fixture struct {
	svc     *Service
	db      *gorm.DB
	node    *snowflake.Node
	bus     *eventbus.MemoryBus
	ownerID snowflake.ID
	flat    *flatdomain.Flat
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&identitydomain.Account{},
		&propertydomain.Property{},
		&flatdomain.Flat{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ownerID := node.Generate()

	property := &propertydomain.Property{
		ID:               node.Generate(),
		OwnerID:          ownerID,
		Name:             "Green View",
		PropertyCode:     "GV12",
		WaterRatePerUnit: decimal.NewFromInt(5),
		FixedCharge:      decimal.NewFromInt(50),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, db.Create(property).Error)

	flat := &flatdomain.Flat{
		ID:         node.Generate(),
		PropertyID: property.ID,
		FlatNumber: "101",
		FlatCode:   "GV12-F101",
		CreatedAt:  now,
	}
	require.NoError(t, db.Create(flat).Error)

	bus := eventbus.NewMemoryBus()
	svc := &Service{
		db:           db,
		log:          zap.NewNop(),
		clock:        fixedClock{t: now},
		bus:          bus,
		flatRepo:     flatrepo.Provide(),
		identityRepo: identityrepo.Provide(),
		propertyRepo: propertyrepo.Provide(),
	}
	return &fixture{svc: svc, db: db, node: node, bus: bus, ownerID: ownerID, flat: flat}
}

func (f *fixture) newTenant(t *testing.T, email string) *identitydomain.Account {
	t.Helper()
	account := &identitydomain.Account{
		ID:        f.node.Generate(),
		Role:      identitydomain.RoleTenant,
		Name:      "Tenant",
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(account).Error)
	return account
}

func TestBindSetsBothSides(t *testing.T) {
	f := newFixture(t)
	tenant := f.newTenant(t, "a@example.com")

	flat, err := f.svc.Bind(context.Background(), tenant.ID, "GV12-F101")
	require.NoError(t, err)
	require.NotNil(t, flat.TenantID)
	require.Equal(t, tenant.ID, *flat.TenantID)

	var stored identitydomain.Account
	require.NoError(t, f.db.First(&stored, "id = ?", tenant.ID).Error)
	require.NotNil(t, stored.FlatID)
	require.Equal(t, flat.ID, *stored.FlatID)
}

func TestBindUnknownCode(t *testing.T) {
	f := newFixture(t)
	tenant := f.newTenant(t, "a@example.com")

	_, err := f.svc.Bind(context.Background(), tenant.ID, "NO-SUCH-CODE")
	require.ErrorIs(t, err, tenancydomain.ErrFlatCodeNotFound)
}

func TestBindOccupiedFlatConflicts(t *testing.T) {
	f := newFixture(t)
	first := f.newTenant(t, "a@example.com")
	second := f.newTenant(t, "b@example.com")

	_, err := f.svc.Bind(context.Background(), first.ID, "GV12-F101")
	require.NoError(t, err)

	_, err = f.svc.Bind(context.Background(), second.ID, "GV12-F101")
	require.ErrorIs(t, err, tenancydomain.ErrFlatOccupied)

	// Loser left untouched: no partial write.
	var stored identitydomain.Account
	require.NoError(t, f.db.First(&stored, "id = ?", second.ID).Error)
	require.Nil(t, stored.FlatID)

	var flat flatdomain.Flat
	require.NoError(t, f.db.First(&flat, "id = ?", f.flat.ID).Error)
	require.Equal(t, first.ID, *flat.TenantID)
}

func TestBindBoundAccountConflicts(t *testing.T) {
	f := newFixture(t)
	tenant := f.newTenant(t, "a@example.com")

	_, err := f.svc.Bind(context.Background(), tenant.ID, "GV12-F101")
	require.NoError(t, err)

	_, err = f.svc.Bind(context.Background(), tenant.ID, "GV12-F101")
	require.ErrorIs(t, err, tenancydomain.ErrAlreadyBound)
}

func TestAccountClaimsAtMostOneFlat(t *testing.T) {
	f := newFixture(t)
	tenant := f.newTenant(t, "a@example.com")

	second := &flatdomain.Flat{
		ID:         f.node.Generate(),
		PropertyID: f.flat.PropertyID,
		FlatNumber: "102",
		FlatCode:   "GV12-F102",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(second).Error)

	// The account-side claim is conditional on flat_id IS NULL, so of
	// two claims racing past the pre-check only one can land.
	repo := identityrepo.Provide()
	won, err := repo.ClaimFlat(context.Background(), f.db, tenant.ID, f.flat.ID)
	require.NoError(t, err)
	require.True(t, won)

	won, err = repo.ClaimFlat(context.Background(), f.db, tenant.ID, second.ID)
	require.NoError(t, err)
	require.False(t, won)

	var stored identitydomain.Account
	require.NoError(t, f.db.First(&stored, "id = ?", tenant.ID).Error)
	require.Equal(t, f.flat.ID, *stored.FlatID)

	// Bind surfaces the losing claim as a conflict and leaves the
	// second flat vacant.
	_, err = f.svc.Bind(context.Background(), tenant.ID, "GV12-F102")
	require.ErrorIs(t, err, tenancydomain.ErrAlreadyBound)

	var untouched flatdomain.Flat
	require.NoError(t, f.db.First(&untouched, "id = ?", second.ID).Error)
	require.Nil(t, untouched.TenantID)
}

func TestBindRequiresTenantRole(t *testing.T) {
	f := newFixture(t)
	owner := &identitydomain.Account{
		ID:        f.node.Generate(),
		Role:      identitydomain.RoleOwner,
		Name:      "Owner",
		Email:     "owner@example.com",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(owner).Error)

	_, err := f.svc.Bind(context.Background(), owner.ID, "GV12-F101")
	require.ErrorIs(t, err, identitydomain.ErrNotTenant)
}

func TestUnbindVacatesAndRotatesCode(t *testing.T) {
	f := newFixture(t)
	tenant := f.newTenant(t, "a@example.com")

	_, err := f.svc.Bind(context.Background(), tenant.ID, "GV12-F101")
	require.NoError(t, err)

	final := 142.5
	vacated, err := f.svc.Unbind(context.Background(), f.ownerID, f.flat.ID, tenancydomain.UnbindRequest{
		FinalReading: &final,
	})
	require.NoError(t, err)

	require.Nil(t, vacated.TenantID)
	require.Equal(t, tenant.ID, *vacated.PreviousTenantID)
	require.NotNil(t, vacated.VacatedAt)
	require.Equal(t, 142.5, *vacated.FinalReading)
	require.NotEqual(t, "GV12-F101", vacated.FlatCode)
	require.Len(t, vacated.FlatCode, flatdomain.InviteCodeLength)

	var stored identitydomain.Account
	require.NoError(t, f.db.First(&stored, "id = ?", tenant.ID).Error)
	require.Nil(t, stored.FlatID)
}

func TestRetiredCodeNeverBindsAgain(t *testing.T) {
	f := newFixture(t)
	first := f.newTenant(t, "a@example.com")
	second := f.newTenant(t, "b@example.com")

	_, err := f.svc.Bind(context.Background(), first.ID, "GV12-F101")
	require.NoError(t, err)

	vacated, err := f.svc.Unbind(context.Background(), f.ownerID, f.flat.ID, tenancydomain.UnbindRequest{})
	require.NoError(t, err)

	_, err = f.svc.Bind(context.Background(), second.ID, "GV12-F101")
	require.ErrorIs(t, err, tenancydomain.ErrFlatCodeNotFound)

	flat, err := f.svc.Bind(context.Background(), second.ID, vacated.FlatCode)
	require.NoError(t, err)
	require.Equal(t, second.ID, *flat.TenantID)
}

func TestUnbindVacantFlatConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Unbind(context.Background(), f.ownerID, f.flat.ID, tenancydomain.UnbindRequest{})
	require.ErrorIs(t, err, tenancydomain.ErrFlatVacant)
}

func TestUnbindPublishesVacatedEvent(t *testing.T) {
	f := newFixture(t)
	tenant := f.newTenant(t, "a@example.com")

	ch, cancel, err := f.bus.Subscribe(context.Background(), eventbus.TopicFlatVacated)
	require.NoError(t, err)
	defer cancel()

	_, err = f.svc.Bind(context.Background(), tenant.ID, "GV12-F101")
	require.NoError(t, err)
	_, err = f.svc.Unbind(context.Background(), f.ownerID, f.flat.ID, tenancydomain.UnbindRequest{})
	require.NoError(t, err)

	select {
	case event := <-ch:
		require.Equal(t, f.flat.ID.String(), event.Payload["flat_id"])
	case <-time.After(time.Second):
		t.Fatal("no vacated event")
	}
}
