package service

import (
	"context"

	"github.com/aquameter/aquameter/internal/clock"
	"github.com/aquameter/aquameter/internal/eventbus"
	"github.com/aquameter/aquameter/internal/filestore"
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	paymentdomain "github.com/aquameter/aquameter/internal/payment/domain"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	readingdomain "github.com/aquameter/aquameter/internal/reading/domain"
	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	bus   eventbus.Bus

	gateway paymentdomain.Gateway
	store   filestore.Store

	repo         paymentdomain.Repository
	readingRepo  readingdomain.Repository
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

	Gateway paymentdomain.Gateway
	Store   filestore.Store

	Repo         paymentdomain.Repository
	ReadingRepo  readingdomain.Repository
	FlatRepo     flatdomain.Repository
	PropertyRepo propertydomain.Repository
}

func New(p ServiceParam) paymentdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payment.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		bus:          p.Bus,
		gateway:      p.Gateway,
		store:        p.Store,
		repo:         p.Repo,
		readingRepo:  p.ReadingRepo,
		flatRepo:     p.FlatRepo,
		propertyRepo: p.PropertyRepo,
	}
}

func (s *Service) SettleGateway(ctx context.Context, tenantID, billID snowflake.ID, req paymentdomain.SettleGatewayRequest) (*paymentdomain.Payment, error) {
	bill, err := s.tenantBill(ctx, tenantID, billID)
	if err != nil {
		return nil, err
	}

	// A retried confirmation with a reference we already recorded is
	// answered from the store, not re-applied.
	existing, err := s.repo.FindByBillAndReference(ctx, s.db, bill.ID, req.ExternalReference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if bill.Status != readingdomain.StatusPending {
		return nil, paymentdomain.ErrBillNotPending
	}

	charge, err := s.gateway.VerifyCharge(ctx, req.ExternalReference)
	if err != nil {
		return nil, err
	}
	if !charge.Captured {
		return nil, paymentdomain.ErrChargeNotCaptured
	}
	if !charge.Amount.Equal(bill.BillAmount) {
		return nil, paymentdomain.ErrAmountMismatch
	}

	now := s.clock.Now(ctx)
	reference := charge.Reference
	payment := &paymentdomain.Payment{
		ID:                s.genID.Generate(),
		BillID:            bill.ID,
		TenantID:          tenantID,
		Amount:            bill.BillAmount,
		Method:            paymentdomain.MethodGateway,
		ExternalReference: &reference,
		Status:            paymentdomain.StatusCompleted,
		Metadata: datatypes.JSONMap{
			"currency":      charge.Currency,
			"charge_amount": charge.Amount.StringFixed(2),
		},
		PaidAt:    &now,
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, payment); err != nil {
			return err
		}
		bill.Status = readingdomain.StatusPaid
		bill.PaidAt = &now
		bill.UpdatedAt = &now
		return s.readingRepo.Update(ctx, tx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventbus.TopicPaymentVerified, bill.ID)
	s.log.Info("bill settled via gateway",
		zap.String("bill_id", bill.ID.String()),
		zap.String("external_reference", reference),
	)
	return payment, nil
}

func (s *Service) SubmitProof(ctx context.Context, tenantID, billID snowflake.ID, req paymentdomain.SubmitProofRequest) (*paymentdomain.Payment, error) {
	if len(req.Data) == 0 {
		return nil, paymentdomain.ErrEmptyProof
	}

	bill, err := s.tenantBill(ctx, tenantID, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != readingdomain.StatusPending {
		return nil, paymentdomain.ErrBillNotPending
	}

	// Upload before any write: a storage failure leaves every entity
	// in its prior state.
	proofRef, err := s.store.Save(ctx, req.Data, req.ContentType)
	if err != nil {
		return nil, apperror.Wrap(paymentdomain.ErrStorageFailed, err)
	}

	now := s.clock.Now(ctx)
	payment := &paymentdomain.Payment{
		ID:             s.genID.Generate(),
		BillID:         bill.ID,
		TenantID:       tenantID,
		Amount:         bill.BillAmount,
		Method:         paymentdomain.MethodProofUpload,
		ProofReference: &proofRef,
		Status:         paymentdomain.StatusPendingVerification,
		Metadata: datatypes.JSONMap{
			"content_type": req.ContentType,
		},
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, payment); err != nil {
			return err
		}
		bill.Status = readingdomain.StatusPendingVerification
		bill.ScreenshotSubmittedAt = &now
		bill.UpdatedAt = &now
		return s.readingRepo.Update(ctx, tx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventbus.TopicPaymentSubmitted, bill.ID)
	s.log.Info("payment proof submitted",
		zap.String("bill_id", bill.ID.String()),
		zap.String("proof_reference", proofRef),
	)
	return payment, nil
}

func (s *Service) ConfirmVerification(ctx context.Context, ownerID, billID snowflake.ID) (*paymentdomain.Payment, error) {
	bill, payment, err := s.pendingProof(ctx, ownerID, billID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment.Status = paymentdomain.StatusCompleted
		payment.PaidAt = &now
		if err := s.repo.Update(ctx, tx, payment); err != nil {
			return err
		}
		bill.Status = readingdomain.StatusPaid
		bill.PaidAt = &now
		bill.UpdatedAt = &now
		return s.readingRepo.Update(ctx, tx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventbus.TopicPaymentVerified, bill.ID)
	s.log.Info("payment proof accepted", zap.String("bill_id", bill.ID.String()))
	return payment, nil
}

func (s *Service) RejectVerification(ctx context.Context, ownerID, billID snowflake.ID) (*paymentdomain.Payment, error) {
	bill, payment, err := s.pendingProof(ctx, ownerID, billID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment.Status = paymentdomain.StatusRejected
		if err := s.repo.Update(ctx, tx, payment); err != nil {
			return err
		}
		// The bill reopens; the submission timestamp stays for history.
		now := s.clock.Now(ctx)
		bill.Status = readingdomain.StatusPending
		bill.UpdatedAt = &now
		return s.readingRepo.Update(ctx, tx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment proof rejected", zap.String("bill_id", bill.ID.String()))
	return payment, nil
}

func (s *Service) ListForBill(ctx context.Context, billID snowflake.ID) ([]*paymentdomain.Payment, error) {
	return s.repo.ListByBill(ctx, s.db, billID)
}

// tenantBill loads the bill and checks the caller is the tenant
// currently bound to its flat.
func (s *Service) tenantBill(ctx context.Context, tenantID, billID snowflake.ID) (*readingdomain.Reading, error) {
	bill, err := s.readingRepo.FindByID(ctx, s.db, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, readingdomain.ErrBillNotFound
	}

	flat, err := s.flatRepo.FindByID(ctx, s.db, bill.FlatID)
	if err != nil {
		return nil, err
	}
	if flat == nil || flat.TenantID == nil || *flat.TenantID != tenantID {
		return nil, paymentdomain.ErrNotBillTenant
	}
	return bill, nil
}

func (s *Service) pendingProof(ctx context.Context, ownerID, billID snowflake.ID) (*readingdomain.Reading, *paymentdomain.Payment, error) {
	bill, err := s.readingRepo.FindByID(ctx, s.db, billID)
	if err != nil {
		return nil, nil, err
	}
	if bill == nil {
		return nil, nil, readingdomain.ErrBillNotFound
	}

	property, err := s.propertyRepo.FindByID(ctx, s.db, bill.PropertyID)
	if err != nil {
		return nil, nil, err
	}
	if property == nil {
		return nil, nil, readingdomain.ErrPropertyMissing
	}
	if property.OwnerID != ownerID {
		return nil, nil, propertydomain.ErrNotPropertyOwner
	}

	if bill.Status != readingdomain.StatusPendingVerification {
		return nil, nil, paymentdomain.ErrNoPendingProof
	}
	payment, err := s.repo.FindPendingProofByBill(ctx, s.db, bill.ID)
	if err != nil {
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, paymentdomain.ErrNoPendingProof
	}
	return bill, payment, nil
}

func (s *Service) publish(ctx context.Context, topic string, billID snowflake.ID) {
	if err := s.bus.Publish(ctx, eventbus.Event{
		Topic:   topic,
		At:      s.clock.Now(ctx),
		Payload: map[string]any{"bill_id": billID.String()},
	}); err != nil {
		s.log.Warn("event not published", zap.String("topic", topic), zap.Error(err))
	}
}
