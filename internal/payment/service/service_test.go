package service

import (
	"context"
	"testing"
	"time"

	"github.com/aquameter/aquameter/internal/eventbus"
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	flatrepo "github.com/aquameter/aquameter/internal/flat/repository"
	paymentdomain "github.com/aquameter/aquameter/internal/payment/domain"
	paymentrepo "github.com/aquameter/aquameter/internal/payment/repository"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	propertyrepo "github.com/aquameter/aquameter/internal/property/repository"
	readingdomain "github.com/aquameter/aquameter/internal/reading/domain"
	readingrepo "github.com/aquameter/aquameter/internal/reading/repository"
	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now(context.Context) time.Time { return c.t }

type fakeGateway struct {
	charges map[string]*paymentdomain.GatewayCharge
	err     error
	calls   int
}

func (g *fakeGateway) VerifyCharge(_ context.Context, reference string) (*paymentdomain.GatewayCharge, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	charge, ok := g.charges[reference]
	if !ok {
		return nil, paymentdomain.ErrChargeNotFound
	}
	return charge, nil
}

type fakeStore struct {
	saved int
	err   error
}

func (s *fakeStore) Save(_ context.Context, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved++
	return "payment-proofs/fake.png", nil
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	gateway  *fakeGateway
	store    *fakeStore
	bus      *eventbus.MemoryBus
	now      time.Time
	ownerID  snowflake.ID
	tenantID snowflake.ID
	flat     *flatdomain.Flat
	bill     *readingdomain.Reading
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&propertydomain.Property{},
		&flatdomain.Flat{},
		&readingdomain.Reading{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	ownerID := node.Generate()
	tenantID := node.Generate()

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
		ID:             node.Generate(),
		PropertyID:     property.ID,
		FlatNumber:     "101",
		FlatCode:       "GV12-F101",
		TenantID:       &tenantID,
		FreeWaterUnits: 10,
		CreatedAt:      now,
	}
	require.NoError(t, db.Create(flat).Error)

	bill := &readingdomain.Reading{
		ID:              node.Generate(),
		FlatID:          flat.ID,
		PropertyID:      property.ID,
		BillMonth:       "Mar-2024",
		PreviousReading: 100,
		CurrentReading:  160,
		UnitsConsumed:   60,
		FreeWaterUnits:  10,
		BillableUnits:   50,
		BillAmount:      decimal.RequireFromString("300.00"),
		Status:          readingdomain.StatusPending,
		DueDate:         now.AddDate(0, 0, 15),
		CreatedAt:       now,
	}
	require.NoError(t, db.Create(bill).Error)

	gtw := &fakeGateway{charges: map[string]*paymentdomain.GatewayCharge{
		"pay_abc123": {
			Reference: "pay_abc123",
			Amount:    bill.BillAmount,
			Currency:  "INR",
			Captured:  true,
		},
	}}
	store := &fakeStore{}
	bus := eventbus.NewMemoryBus()

	svc := &Service{
		db:           db,
		log:          zap.NewNop(),
		genID:        node,
		clock:        fixedClock{t: now},
		bus:          bus,
		gateway:      gtw,
		store:        store,
		repo:         paymentrepo.Provide(),
		readingRepo:  readingrepo.Provide(),
		flatRepo:     flatrepo.Provide(),
		propertyRepo: propertyrepo.Provide(),
	}
	return &fixture{
		svc: svc, db: db, gateway: gtw, store: store, bus: bus, now: now,
		ownerID: ownerID, tenantID: tenantID, flat: flat, bill: bill,
	}
}

func (f *fixture) reloadBill(t *testing.T) *readingdomain.Reading {
	t.Helper()
	var bill readingdomain.Reading
	require.NoError(t, f.db.First(&bill, "id = ?", f.bill.ID).Error)
	return &bill
}

func TestSettleGateway(t *testing.T) {
	f := newFixture(t)

	payment, err := f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SettleGatewayRequest{
		ExternalReference: "pay_abc123",
	})
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusCompleted, payment.Status)
	require.Equal(t, paymentdomain.MethodGateway, payment.Method)
	require.Equal(t, "pay_abc123", *payment.ExternalReference)
	require.Equal(t, "300.00", payment.Amount.StringFixed(2))
	require.Equal(t, "INR", payment.Metadata["currency"])
	require.Equal(t, "300.00", payment.Metadata["charge_amount"])
	require.NotNil(t, payment.PaidAt)

	bill := f.reloadBill(t)
	require.Equal(t, readingdomain.StatusPaid, bill.Status)
	require.NotNil(t, bill.PaidAt)
	require.Equal(t, f.now, bill.PaidAt.UTC())
}

func TestSettleGatewayIdempotentRetry(t *testing.T) {
	f := newFixture(t)
	req := paymentdomain.SettleGatewayRequest{ExternalReference: "pay_abc123"}

	first, err := f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, req)
	require.NoError(t, err)

	// Same reference again: no new payment, no second gateway call.
	second, err := f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, req)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, f.gateway.calls)

	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Where("bill_id = ?", f.bill.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSettleGatewayFailureLeavesBillPending(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = apperror.Wrap(paymentdomain.ErrGatewayFailed, context.DeadlineExceeded)

	_, err := f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SettleGatewayRequest{
		ExternalReference: "pay_abc123",
	})
	require.ErrorIs(t, err, paymentdomain.ErrGatewayFailed)

	bill := f.reloadBill(t)
	require.Equal(t, readingdomain.StatusPending, bill.Status)

	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSettleGatewayChargeNotCaptured(t *testing.T) {
	f := newFixture(t)
	f.gateway.charges["pay_abc123"].Captured = false

	_, err := f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SettleGatewayRequest{
		ExternalReference: "pay_abc123",
	})
	require.ErrorIs(t, err, paymentdomain.ErrChargeNotCaptured)
	require.Equal(t, readingdomain.StatusPending, f.reloadBill(t).Status)
}

func TestSettleGatewayAmountMismatch(t *testing.T) {
	f := newFixture(t)
	f.gateway.charges["pay_abc123"].Amount = decimal.RequireFromString("150.00")

	_, err := f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SettleGatewayRequest{
		ExternalReference: "pay_abc123",
	})
	require.ErrorIs(t, err, paymentdomain.ErrAmountMismatch)

	// A short-paid charge settles nothing.
	require.Equal(t, readingdomain.StatusPending, f.reloadBill(t).Status)
	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSettleGatewayWrongTenant(t *testing.T) {
	f := newFixture(t)
	stranger := f.tenantID + 1

	_, err := f.svc.SettleGateway(context.Background(), stranger, f.bill.ID, paymentdomain.SettleGatewayRequest{
		ExternalReference: "pay_abc123",
	})
	require.ErrorIs(t, err, paymentdomain.ErrNotBillTenant)
}

func TestSubmitProof(t *testing.T) {
	f := newFixture(t)
	events, stop, err := f.bus.Subscribe(context.Background(), eventbus.TopicPaymentSubmitted)
	require.NoError(t, err)
	defer stop()

	payment, err := f.svc.SubmitProof(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SubmitProofRequest{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
	})
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusPendingVerification, payment.Status)
	require.Equal(t, paymentdomain.MethodProofUpload, payment.Method)
	require.NotNil(t, payment.ProofReference)
	require.Equal(t, "image/png", payment.Metadata["content_type"])
	require.Nil(t, payment.PaidAt)
	require.Equal(t, 1, f.store.saved)

	bill := f.reloadBill(t)
	require.Equal(t, readingdomain.StatusPendingVerification, bill.Status)
	require.NotNil(t, bill.ScreenshotSubmittedAt)

	select {
	case ev := <-events:
		require.Equal(t, eventbus.TopicPaymentSubmitted, ev.Topic)
	default:
		t.Fatal("expected payment.submitted event")
	}
}

func TestSubmitProofStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.store.err = context.DeadlineExceeded

	_, err := f.svc.SubmitProof(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SubmitProofRequest{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
	})
	require.ErrorIs(t, err, paymentdomain.ErrStorageFailed)

	// Nothing written: bill untouched, no payment row.
	require.Equal(t, readingdomain.StatusPending, f.reloadBill(t).Status)
	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSubmitProofEmpty(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitProof(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SubmitProofRequest{})
	require.ErrorIs(t, err, paymentdomain.ErrEmptyProof)
	require.Equal(t, 0, f.store.saved)
}

func TestConfirmVerification(t *testing.T) {
	f := newFixture(t)

	submitted, err := f.svc.SubmitProof(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SubmitProofRequest{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
	})
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmVerification(context.Background(), f.ownerID, f.bill.ID)
	require.NoError(t, err)
	require.Equal(t, submitted.ID, confirmed.ID)
	require.Equal(t, paymentdomain.StatusCompleted, confirmed.Status)
	require.NotNil(t, confirmed.PaidAt)

	require.Equal(t, readingdomain.StatusPaid, f.reloadBill(t).Status)
}

func TestRejectVerificationReopensBill(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitProof(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SubmitProofRequest{
		Data:        []byte("blurry"),
		ContentType: "image/png",
	})
	require.NoError(t, err)

	rejected, err := f.svc.RejectVerification(context.Background(), f.ownerID, f.bill.ID)
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusRejected, rejected.Status)
	require.Nil(t, rejected.PaidAt)
	require.Equal(t, readingdomain.StatusPending, f.reloadBill(t).Status)

	// The reopened bill accepts a fresh submission or a gateway settle.
	payment, err := f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SettleGatewayRequest{
		ExternalReference: "pay_abc123",
	})
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusCompleted, payment.Status)
	require.Equal(t, readingdomain.StatusPaid, f.reloadBill(t).Status)

	payments, err := f.svc.ListForBill(context.Background(), f.bill.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
}

func TestConfirmVerificationForeignOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitProof(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SubmitProofRequest{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
	})
	require.NoError(t, err)

	_, err = f.svc.ConfirmVerification(context.Background(), f.ownerID+1, f.bill.ID)
	require.ErrorIs(t, err, propertydomain.ErrNotPropertyOwner)
	require.Equal(t, readingdomain.StatusPendingVerification, f.reloadBill(t).Status)
}

func TestConfirmVerificationWithoutProof(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ConfirmVerification(context.Background(), f.ownerID, f.bill.ID)
	require.ErrorIs(t, err, paymentdomain.ErrNoPendingProof)
}

func TestSettleGatewayBillAlreadyPaid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SettleGatewayRequest{
		ExternalReference: "pay_abc123",
	})
	require.NoError(t, err)

	// A different reference against the settled bill is a conflict.
	f.gateway.charges["pay_other"] = &paymentdomain.GatewayCharge{
		Reference: "pay_other",
		Amount:    f.bill.BillAmount,
		Currency:  "INR",
		Captured:  true,
	}
	_, err = f.svc.SettleGateway(context.Background(), f.tenantID, f.bill.ID, paymentdomain.SettleGatewayRequest{
		ExternalReference: "pay_other",
	})
	require.ErrorIs(t, err, paymentdomain.ErrBillNotPending)
}
