package domain

import (
	"context"

	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/bwmarrin/snowflake"
)

type SettleGatewayRequest struct {
	ExternalReference string `json:"external_reference" binding:"required"`
}

type SubmitProofRequest struct {
	Data        []byte
	ContentType string
}

type Service interface {
	// SettleGateway settles a pending bill after a gateway charge.
	// Idempotent per external reference: a client retry after a dropped
	// response returns the already-recorded payment.
	SettleGateway(ctx context.Context, tenantID, billID snowflake.ID, req SettleGatewayRequest) (*Payment, error)
	// SubmitProof stores the uploaded evidence and parks the bill in
	// pending_verification until the owner rules on it.
	SubmitProof(ctx context.Context, tenantID, billID snowflake.ID, req SubmitProofRequest) (*Payment, error)
	ConfirmVerification(ctx context.Context, ownerID, billID snowflake.ID) (*Payment, error)
	// RejectVerification returns the bill to pending so the tenant can
	// pay again or resubmit a proof.
	RejectVerification(ctx context.Context, ownerID, billID snowflake.ID) (*Payment, error)
	ListForBill(ctx context.Context, billID snowflake.ID) ([]*Payment, error)
}

var (
	ErrBillNotPending    = apperror.Conflict("bill_not_pending", "bill is not awaiting payment")
	ErrNotBillTenant     = apperror.Conflict("not_bill_tenant", "bill belongs to a different tenant")
	ErrNoPendingProof    = apperror.Conflict("no_pending_proof", "bill has no proof awaiting verification")
	ErrChargeNotFound    = apperror.NotFound("charge_not_found", "gateway does not know this charge")
	ErrChargeNotCaptured = apperror.Conflict("charge_not_captured", "gateway charge was not captured")
	ErrAmountMismatch    = apperror.Conflict("charge_amount_mismatch", "gateway charge amount does not match the bill")
	ErrEmptyProof        = apperror.Validation("empty_proof", "proof upload is empty")
	ErrGatewayFailed     = apperror.External("gateway_failed", nil)
	ErrStorageFailed     = apperror.External("storage_failed", nil)
)
