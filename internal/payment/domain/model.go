package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Method string

const (
	MethodGateway     Method = "gateway"
	MethodProofUpload Method = "proof_upload"
)

type Status string

const (
	StatusCompleted           Status = "completed"
	StatusPendingVerification Status = "pending_verification"
	StatusRejected            Status = "rejected"
)

// Payment records funds tendered against one bill. It never mutates
// the bill's consumption or amount, only drives its status. For
// gateway settlements ExternalReference holds the gateway transaction
// id; the unique index over (bill_id, external_reference) is what
// makes retried confirmations idempotent.
type Payment struct {
	ID                snowflake.ID      `json:"id" gorm:"primaryKey"`
	BillID            snowflake.ID      `json:"bill_id" gorm:"not null;index;uniqueIndex:idx_payments_bill_ref"`
	TenantID          snowflake.ID      `json:"tenant_id" gorm:"not null;index"`
	Amount            decimal.Decimal   `json:"amount" gorm:"type:numeric(12,2);not null"`
	Method            Method            `json:"method" gorm:"type:varchar(16);not null"`
	ExternalReference *string           `json:"external_reference,omitempty" gorm:"uniqueIndex:idx_payments_bill_ref"`
	ProofReference    *string           `json:"proof_reference,omitempty"`
	Status            Status            `json:"status" gorm:"type:varchar(24);not null"`
	Metadata          datatypes.JSONMap `json:"metadata,omitempty"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }
