package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aquameter/aquameter/internal/clock"
	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
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
	repo  identitydomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  identitydomain.Repository
}

func New(p ServiceParam) identitydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("identity.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Register(ctx context.Context, req identitydomain.RegisterRequest) (*identitydomain.Account, error) {
	switch req.Role {
	case identitydomain.RoleOwner, identitydomain.RoleTenant:
	default:
		return nil, identitydomain.ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, identitydomain.ErrEmailTaken
	}

	account := &identitydomain.Account{
		ID:        s.genID.Generate(),
		Role:      req.Role,
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: s.clock.Now(ctx),
	}
	if err := s.repo.Insert(ctx, s.db, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, identitydomain.ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("role", string(account.Role)),
	)
	return account, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*identitydomain.Account, error) {
	account, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, identitydomain.ErrAccountNotFound
	}
	return account, nil
}

func (s *Service) RequireOwner(ctx context.Context, id snowflake.ID) (*identitydomain.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsOwner() {
		return nil, identitydomain.ErrNotOwner
	}
	return account, nil
}

func (s *Service) RequireTenant(ctx context.Context, id snowflake.ID) (*identitydomain.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsTenant() {
		return nil, identitydomain.ErrNotTenant
	}
	return account, nil
}
