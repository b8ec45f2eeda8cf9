package domain

import (
	"context"

	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/aquameter/aquameter/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RecordRequest struct {
	CurrentReading float64 `json:"current_reading"`
	BillMonth      string  `json:"bill_month" binding:"required"`
}

type CorrectAmountRequest struct {
	BillAmount decimal.Decimal `json:"bill_amount"`
}

type ListRequest struct {
	PageToken string `json:"page_token"`
	PageSize  int32  `json:"page_size"`
	SortBy    string `json:"sort_by"`
	OrderBy   string `json:"order_by"`
}

type ListResponse struct {
	pagination.PageInfo
	Readings []*Reading `json:"readings"`
}

type Service interface {
	// Record converts a new meter reading into a bill. The previous
	// reading is re-derived server-side; client-supplied minimums are
	// never trusted.
	Record(ctx context.Context, ownerID, flatID snowflake.ID, req RecordRequest) (*Reading, error)
	// CorrectAmount is an administrative override: it replaces the bill
	// amount unconditionally and recomputes nothing.
	CorrectAmount(ctx context.Context, ownerID, billID snowflake.ID, req CorrectAmountRequest) (*Reading, error)
	Delete(ctx context.Context, ownerID, billID snowflake.ID) error
	Get(ctx context.Context, billID snowflake.ID) (*Reading, error)
	LatestForFlat(ctx context.Context, flatID snowflake.ID) (*Reading, error)
	ListForFlat(ctx context.Context, flatID snowflake.ID, req ListRequest) (ListResponse, error)
}

var (
	ErrReadingBelowPrevious = apperror.Validation("reading_below_previous", "current reading is below the previous reading")
	ErrNegativeReading      = apperror.Validation("negative_reading", "meter reading must not be negative")
	ErrNegativeAmount       = apperror.Validation("negative_amount", "bill amount must not be negative")
	ErrBillNotFound         = apperror.NotFound("bill_not_found", "bill not found")
	// ErrPropertyMissing means the flat points at a property that no
	// longer exists. It is fatal for billing and must never be
	// defaulted to a zero bill.
	ErrPropertyMissing = apperror.Consistency("property_missing", "flat references a missing property")
)
