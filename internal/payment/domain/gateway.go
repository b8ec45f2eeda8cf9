package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// GatewayCharge is the canonical view of a captured charge as reported
// by the payment widget's backend.
type GatewayCharge struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Captured  bool
}

// Gateway verifies charges with the external payment provider. The
// widget runs client-side; the core only ever confirms server-side
// that the referenced charge really was captured.
type Gateway interface {
	VerifyCharge(ctx context.Context, reference string) (*GatewayCharge, error)
}
