package service

import (
	"context"
	"strings"

	"github.com/aquameter/aquameter/internal/clock"
	"github.com/aquameter/aquameter/internal/eventbus"
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	tenancydomain "github.com/aquameter/aquameter/internal/tenancy/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const codeGenAttempts = 5

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	bus   eventbus.Bus

	flatRepo     flatdomain.Repository
	identityRepo identitydomain.Repository
	propertyRepo propertydomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Bus   eventbus.Bus

	FlatRepo     flatdomain.Repository
	IdentityRepo identitydomain.Repository
	PropertyRepo propertydomain.Repository
}

func New(p ServiceParam) tenancydomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("tenancy.service"),
		clock:        p.Clock,
		bus:          p.Bus,
		flatRepo:     p.FlatRepo,
		identityRepo: p.IdentityRepo,
		propertyRepo: p.PropertyRepo,
	}
}

func (s *Service) Bind(ctx context.Context, accountID snowflake.ID, flatCode string) (*flatdomain.Flat, error) {
	flatCode = strings.TrimSpace(flatCode)

	account, err := s.identityRepo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, identitydomain.ErrAccountNotFound
	}
	if !account.IsTenant() {
		return nil, identitydomain.ErrNotTenant
	}
	if account.FlatID != nil {
		return nil, tenancydomain.ErrAlreadyBound
	}

	var bound *flatdomain.Flat
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flat, err := s.flatRepo.FindByCode(ctx, tx, flatCode)
		if err != nil {
			return err
		}
		if flat == nil {
			return tenancydomain.ErrFlatCodeNotFound
		}

		claimed, err := s.flatRepo.ClaimTenant(ctx, tx, flat.ID, accountID)
		if err != nil {
			return err
		}
		if !claimed {
			return tenancydomain.ErrFlatOccupied
		}

		// The account side is claimed conditionally too: one tenant
		// racing two invite codes binds at most one flat.
		accountClaimed, err := s.identityRepo.ClaimFlat(ctx, tx, accountID, flat.ID)
		if err != nil {
			return err
		}
		if !accountClaimed {
			return tenancydomain.ErrAlreadyBound
		}

		flat.TenantID = &accountID
		bound = flat
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant bound",
		zap.String("flat_id", bound.ID.String()),
		zap.String("tenant_id", accountID.String()),
	)
	return bound, nil
}

func (s *Service) Unbind(ctx context.Context, ownerID, flatID snowflake.ID, req tenancydomain.UnbindRequest) (*flatdomain.Flat, error) {
	flat, err := s.flatRepo.FindByID(ctx, s.db, flatID)
	if err != nil {
		return nil, err
	}
	if flat == nil {
		return nil, flatdomain.ErrFlatNotFound
	}

	property, err := s.propertyRepo.FindByID(ctx, s.db, flat.PropertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, propertydomain.ErrPropertyNotFound
	}
	if property.OwnerID != ownerID {
		return nil, propertydomain.ErrNotPropertyOwner
	}

	if !flat.Occupied() {
		return nil, tenancydomain.ErrFlatVacant
	}

	outgoing := *flat.TenantID
	now := s.clock.Now(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		newCode, err := s.freshCode(ctx, tx)
		if err != nil {
			return err
		}

		if err := s.identityRepo.ClearFlat(ctx, tx, outgoing); err != nil {
			return err
		}

		flat.TenantID = nil
		flat.PreviousTenantID = &outgoing
		flat.VacatedAt = &now
		flat.FinalReading = req.FinalReading
		flat.FlatCode = newCode
		return s.flatRepo.Update(ctx, tx, flat)
	})
	if err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, eventbus.Event{
		Topic:   eventbus.TopicFlatVacated,
		At:      now,
		Payload: map[string]any{"flat_id": flat.ID.String()},
	}); err != nil {
		s.log.Warn("flat vacated event not published", zap.Error(err))
	}

	s.log.Info("tenant removed",
		zap.String("flat_id", flat.ID.String()),
		zap.String("previous_tenant_id", outgoing.String()),
	)
	return flat, nil
}

// freshCode draws random invite codes until one misses the registry.
func (s *Service) freshCode(ctx context.Context, tx *gorm.DB) (string, error) {
	for i := 0; i < codeGenAttempts; i++ {
		code, err := flatdomain.GenerateInviteCode()
		if err != nil {
			return "", err
		}
		exists, err := s.flatRepo.CodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", flatdomain.ErrCodeGenExhausted
}
