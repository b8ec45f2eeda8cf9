package service

import (
	"context"
	"testing"
	"time"

	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	flatrepo "github.com/aquameter/aquameter/internal/flat/repository"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	propertyrepo "github.com/aquameter/aquameter/internal/property/repository"
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
	svc      *Service
	node     *snowflake.Node
	db       *gorm.DB
	ownerID  snowflake.ID
	property *propertydomain.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&propertydomain.Property{}, &flatdomain.Flat{}))

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

	svc := &Service{
		db:           db,
		log:          zap.NewNop(),
		genID:        node,
		clock:        fixedClock{t: now},
		repo:         flatrepo.Provide(),
		propertyRepo: propertyrepo.Provide(),
	}
	return &fixture{svc: svc, node: node, db: db, ownerID: ownerID, property: property}
}

func TestAddFlatDerivesCode(t *testing.T) {
	f := newFixture(t)

	flat, err := f.svc.AddFlat(context.Background(), f.ownerID, f.property.ID, flatdomain.AddFlatRequest{
		FlatNumber: "101",
		Floor:      "1",
	})
	require.NoError(t, err)
	require.Equal(t, "GV12-F101", flat.FlatCode)
	require.Nil(t, flat.TenantID)
}

func TestAddFlatDuplicateNumberConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddFlat(context.Background(), f.ownerID, f.property.ID, flatdomain.AddFlatRequest{FlatNumber: "101"})
	require.NoError(t, err)

	_, err = f.svc.AddFlat(context.Background(), f.ownerID, f.property.ID, flatdomain.AddFlatRequest{FlatNumber: "101"})
	require.ErrorIs(t, err, flatdomain.ErrFlatCodeTaken)
}

func TestDeleteFlatRequiresVacancy(t *testing.T) {
	f := newFixture(t)

	flat, err := f.svc.AddFlat(context.Background(), f.ownerID, f.property.ID, flatdomain.AddFlatRequest{FlatNumber: "101"})
	require.NoError(t, err)

	tenantID := f.node.Generate()
	claimed, err := f.svc.repo.ClaimTenant(context.Background(), f.db, flat.ID, tenantID)
	require.NoError(t, err)
	require.True(t, claimed)

	err = f.svc.DeleteFlat(context.Background(), f.ownerID, flat.ID)
	require.ErrorIs(t, err, flatdomain.ErrFlatOccupied)
}

func TestDeleteVacantFlat(t *testing.T) {
	f := newFixture(t)

	flat, err := f.svc.AddFlat(context.Background(), f.ownerID, f.property.ID, flatdomain.AddFlatRequest{FlatNumber: "101"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteFlat(context.Background(), f.ownerID, flat.ID))

	_, err = f.svc.Get(context.Background(), flat.ID)
	require.ErrorIs(t, err, flatdomain.ErrFlatNotFound)
}

func TestClaimTenantIsExclusive(t *testing.T) {
	f := newFixture(t)

	flat, err := f.svc.AddFlat(context.Background(), f.ownerID, f.property.ID, flatdomain.AddFlatRequest{FlatNumber: "101"})
	require.NoError(t, err)

	first, err := f.svc.repo.ClaimTenant(context.Background(), f.db, flat.ID, f.node.Generate())
	require.NoError(t, err)
	require.True(t, first)

	second, err := f.svc.repo.ClaimTenant(context.Background(), f.db, flat.ID, f.node.Generate())
	require.NoError(t, err)
	require.False(t, second)
}

func TestSetFreeAllowance(t *testing.T) {
	f := newFixture(t)

	flat, err := f.svc.AddFlat(context.Background(), f.ownerID, f.property.ID, flatdomain.AddFlatRequest{FlatNumber: "101"})
	require.NoError(t, err)

	_, err = f.svc.SetFreeAllowance(context.Background(), f.ownerID, flat.ID, -1)
	require.ErrorIs(t, err, flatdomain.ErrNegativeAllowance)

	updated, err := f.svc.SetFreeAllowance(context.Background(), f.ownerID, flat.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 10.0, updated.FreeWaterUnits)
}
