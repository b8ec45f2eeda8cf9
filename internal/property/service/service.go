package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aquameter/aquameter/internal/clock"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  propertydomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  propertydomain.Repository
}

func New(p ServiceParam) propertydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("property.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, req propertydomain.CreateRequest) (*propertydomain.Property, error) {
	code := strings.TrimSpace(req.PropertyCode)
	if code == "" {
		return nil, propertydomain.ErrInvalidCode
	}
	if req.WaterRatePerUnit.IsNegative() {
		return nil, propertydomain.ErrNegativeRate
	}
	if req.FixedCharge.IsNegative() {
		return nil, propertydomain.ErrNegativeCharge
	}

	existing, err := s.repo.FindByOwnerAndCode(ctx, s.db, ownerID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, propertydomain.ErrPropertyCodeTaken
	}

	now := s.clock.Now(ctx)
	property := &propertydomain.Property{
		ID:               s.genID.Generate(),
		OwnerID:          ownerID,
		Name:             strings.TrimSpace(req.Name),
		Address:          strings.TrimSpace(req.Address),
		City:             strings.TrimSpace(req.City),
		PropertyCode:     code,
		WaterRatePerUnit: req.WaterRatePerUnit,
		FixedCharge:      req.FixedCharge,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, property); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, propertydomain.ErrPropertyCodeTaken
		}
		return nil, err
	}

	s.log.Info("property created",
		zap.String("property_id", property.ID.String()),
		zap.String("property_code", property.PropertyCode),
	)
	return property, nil
}

func (s *Service) UpdateRates(ctx context.Context, ownerID, propertyID snowflake.ID, req propertydomain.UpdateRatesRequest) (*propertydomain.Property, error) {
	if req.WaterRatePerUnit.IsNegative() {
		return nil, propertydomain.ErrNegativeRate
	}
	if req.FixedCharge.IsNegative() {
		return nil, propertydomain.ErrNegativeCharge
	}

	property, err := s.Get(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}

	property.WaterRatePerUnit = req.WaterRatePerUnit
	property.FixedCharge = req.FixedCharge
	property.UpdatedAt = s.clock.Now(ctx)
	if err := s.repo.Update(ctx, s.db, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (s *Service) Get(ctx context.Context, ownerID, propertyID snowflake.ID) (*propertydomain.Property, error) {
	property, err := s.repo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, propertydomain.ErrPropertyNotFound
	}
	if property.OwnerID != ownerID {
		return nil, propertydomain.ErrNotPropertyOwner
	}
	return property, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]*propertydomain.Property, error) {
	return s.repo.ListByOwner(ctx, s.db, ownerID)
}
