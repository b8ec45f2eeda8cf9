package service

import (
	"context"

	"github.com/aquameter/aquameter/internal/clock"
	"github.com/aquameter/aquameter/internal/eventbus"
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	readingdomain "github.com/aquameter/aquameter/internal/reading/domain"
	"github.com/aquameter/aquameter/pkg/db/option"
	"github.com/aquameter/aquameter/pkg/db/pagination"
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
	bus   eventbus.Bus

	repo         readingdomain.Repository
	flatRepo     flatdomain.Repository
	propertyRepo propertydomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Bus   eventbus.Bus

	Repo         readingdomain.Repository
	FlatRepo     flatdomain.Repository
	PropertyRepo propertydomain.Repository
}

func New(p ServiceParam) readingdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("reading.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		bus:          p.Bus,
		repo:         p.Repo,
		flatRepo:     p.FlatRepo,
		propertyRepo: p.PropertyRepo,
	}
}

func (s *Service) Record(ctx context.Context, ownerID, flatID snowflake.ID, req readingdomain.RecordRequest) (*readingdomain.Reading, error) {
	if req.CurrentReading < 0 {
		return nil, readingdomain.ErrNegativeReading
	}

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
		// The flat lost its parent. Billing against defaults would
		// silently produce a zero bill; fail loudly instead.
		s.log.Error("flat references missing property",
			zap.String("flat_id", flat.ID.String()),
			zap.String("property_id", flat.PropertyID.String()),
		)
		return nil, readingdomain.ErrPropertyMissing
	}
	if property.OwnerID != ownerID {
		return nil, propertydomain.ErrNotPropertyOwner
	}

	now := s.clock.Now(ctx)
	var reading *readingdomain.Reading

	// The flat row is locked for the whole transaction: of two
	// concurrent submissions for the same flat, the loser re-reads
	// after the winner commits and re-validates against its row.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.flatRepo.FindByIDForUpdate(ctx, tx, flatID)
		if err != nil {
			return err
		}
		if locked == nil {
			return flatdomain.ErrFlatNotFound
		}
		flat = locked

		latest, err := s.repo.FindLatestByFlat(ctx, tx, flatID)
		if err != nil {
			return err
		}

		var previous float64
		if latest != nil {
			previous = latest.CurrentReading
		}

		breakdown, err := readingdomain.ComputeBill(readingdomain.BillInput{
			PreviousReading: previous,
			CurrentReading:  req.CurrentReading,
			FreeWaterUnits:  flat.FreeWaterUnits,
			RatePerUnit:     property.WaterRatePerUnit,
			FixedCharge:     property.FixedCharge,
		})
		if err != nil {
			return err
		}

		reading = &readingdomain.Reading{
			ID:              s.genID.Generate(),
			FlatID:          flat.ID,
			PropertyID:      property.ID,
			PreviousReading: previous,
			CurrentReading:  req.CurrentReading,
			UnitsConsumed:   breakdown.UnitsConsumed,
			FreeWaterUnits:  flat.FreeWaterUnits,
			BillableUnits:   breakdown.BillableUnits,
			BillAmount:      breakdown.Amount,
			BillMonth:       req.BillMonth,
			Status:          readingdomain.StatusPending,
			DueDate:         now.AddDate(0, 0, readingdomain.DuePeriodDays),
			CreatedAt:       now,
		}
		return s.repo.Insert(ctx, tx, reading)
	})
	if err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, eventbus.Event{
		Topic: eventbus.TopicBillCreated,
		At:    now,
		Payload: map[string]any{
			"flat_id": flat.ID.String(),
			"bill_id": reading.ID.String(),
			"amount":  reading.BillAmount.StringFixed(2),
		},
	}); err != nil {
		s.log.Warn("bill created event not published", zap.Error(err))
	}

	s.log.Info("reading recorded",
		zap.String("flat_id", flat.ID.String()),
		zap.String("bill_id", reading.ID.String()),
		zap.String("amount", reading.BillAmount.StringFixed(2)),
	)
	return reading, nil
}

func (s *Service) CorrectAmount(ctx context.Context, ownerID, billID snowflake.ID, req readingdomain.CorrectAmountRequest) (*readingdomain.Reading, error) {
	if req.BillAmount.IsNegative() {
		return nil, readingdomain.ErrNegativeAmount
	}

	reading, err := s.ownedBill(ctx, ownerID, billID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	reading.BillAmount = req.BillAmount.Round(2)
	reading.UpdatedAt = &now
	if err := s.repo.Update(ctx, s.db, reading); err != nil {
		return nil, err
	}

	s.log.Info("bill amount corrected",
		zap.String("bill_id", reading.ID.String()),
		zap.String("amount", reading.BillAmount.StringFixed(2)),
	)
	return reading, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, billID snowflake.ID) error {
	reading, err := s.ownedBill(ctx, ownerID, billID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, reading.ID)
}

func (s *Service) Get(ctx context.Context, billID snowflake.ID) (*readingdomain.Reading, error) {
	reading, err := s.repo.FindByID(ctx, s.db, billID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, readingdomain.ErrBillNotFound
	}
	return reading, nil
}

func (s *Service) LatestForFlat(ctx context.Context, flatID snowflake.ID) (*readingdomain.Reading, error) {
	return s.repo.FindLatestByFlat(ctx, s.db, flatID)
}

func (s *Service) ListForFlat(ctx context.Context, flatID snowflake.ID, req readingdomain.ListRequest) (readingdomain.ListResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	sort := option.WithSortBy(req.SortBy, req.OrderBy, map[string]bool{
		"created_at": true,
		"due_date":   true,
		"bill_month": true,
	})

	readings, err := s.repo.ListByFlat(ctx, s.db, flatID, page, sort)
	if err != nil {
		return readingdomain.ListResponse{}, err
	}
	total, err := s.repo.CountByFlat(ctx, s.db, flatID)
	if err != nil {
		return readingdomain.ListResponse{}, err
	}

	resp := readingdomain.ListResponse{Readings: readings}
	resp.TotalSize = total
	if next := page.Offset() + len(readings); int64(next) < total {
		resp.NextPageToken = pagination.EncodeToken(next)
	}
	return resp, nil
}

func (s *Service) ownedBill(ctx context.Context, ownerID, billID snowflake.ID) (*readingdomain.Reading, error) {
	reading, err := s.Get(ctx, billID)
	if err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(ctx, s.db, reading.PropertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, readingdomain.ErrPropertyMissing
	}
	if property.OwnerID != ownerID {
		return nil, propertydomain.ErrNotPropertyOwner
	}
	return reading, nil
}
