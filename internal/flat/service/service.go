package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aquameter/aquameter/internal/clock"
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
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

	repo         flatdomain.Repository
	propertyRepo propertydomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock

	Repo         flatdomain.Repository
	PropertyRepo propertydomain.Repository
}

func New(p ServiceParam) flatdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("flat.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		propertyRepo: p.PropertyRepo,
	}
}

func (s *Service) AddFlat(ctx context.Context, ownerID, propertyID snowflake.ID, req flatdomain.AddFlatRequest) (*flatdomain.Flat, error) {
	property, err := s.ownedProperty(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}

	flatNumber := strings.TrimSpace(req.FlatNumber)
	code := flatdomain.DeriveFlatCode(property.PropertyCode, flatNumber)

	taken, err := s.repo.CodeExists(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, flatdomain.ErrFlatCodeTaken
	}

	flat := &flatdomain.Flat{
		ID:          s.genID.Generate(),
		PropertyID:  property.ID,
		FlatNumber:  flatNumber,
		Floor:       strings.TrimSpace(req.Floor),
		FlatCode:    code,
		TenantName:  strings.TrimSpace(req.TenantName),
		TenantPhone: strings.TrimSpace(req.TenantPhone),
		CreatedAt:   s.clock.Now(ctx),
	}
	if err := s.repo.Insert(ctx, s.db, flat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, flatdomain.ErrFlatCodeTaken
		}
		return nil, err
	}

	s.log.Info("flat added",
		zap.String("flat_id", flat.ID.String()),
		zap.String("flat_code", flat.FlatCode),
	)
	return flat, nil
}

func (s *Service) DeleteFlat(ctx context.Context, ownerID, flatID snowflake.ID) error {
	flat, err := s.Get(ctx, flatID)
	if err != nil {
		return err
	}
	if _, err := s.ownedProperty(ctx, ownerID, flat.PropertyID); err != nil {
		return err
	}
	if flat.Occupied() {
		return flatdomain.ErrFlatOccupied
	}
	return s.repo.Delete(ctx, s.db, flat.ID)
}

func (s *Service) SetFreeAllowance(ctx context.Context, ownerID, flatID snowflake.ID, units float64) (*flatdomain.Flat, error) {
	if units < 0 {
		return nil, flatdomain.ErrNegativeAllowance
	}

	flat, err := s.Get(ctx, flatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedProperty(ctx, ownerID, flat.PropertyID); err != nil {
		return nil, err
	}

	flat.FreeWaterUnits = units
	if err := s.repo.Update(ctx, s.db, flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func (s *Service) Get(ctx context.Context, flatID snowflake.ID) (*flatdomain.Flat, error) {
	flat, err := s.repo.FindByID(ctx, s.db, flatID)
	if err != nil {
		return nil, err
	}
	if flat == nil {
		return nil, flatdomain.ErrFlatNotFound
	}
	return flat, nil
}

func (s *Service) ListByProperty(ctx context.Context, ownerID, propertyID snowflake.ID) ([]*flatdomain.Flat, error) {
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	return s.repo.ListByProperty(ctx, s.db, propertyID)
}

func (s *Service) ownedProperty(ctx context.Context, ownerID, propertyID snowflake.ID) (*propertydomain.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, s.db, propertyID)
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
