package domain

import "github.com/shopspring/decimal"

type BillInput struct {
	PreviousReading float64
	CurrentReading  float64
	FreeWaterUnits  float64
	RatePerUnit     decimal.Decimal
	FixedCharge     decimal.Decimal
}

type BillBreakdown struct {
	UnitsConsumed float64
	BillableUnits float64
	Amount        decimal.Decimal
}

// ComputeBill applies the billing rules to one reading. Amounts round
// half-up to the cent at the final multiplication so repeated float
// consumption values cannot drift the charge.
func ComputeBill(in BillInput) (BillBreakdown, error) {
	if in.CurrentReading < in.PreviousReading {
		return BillBreakdown{}, ErrReadingBelowPrevious
	}

	units := in.CurrentReading - in.PreviousReading
	billable := units - in.FreeWaterUnits
	if billable < 0 {
		billable = 0
	}

	amount := decimal.NewFromFloat(billable).
		Mul(in.RatePerUnit).
		Round(2).
		Add(in.FixedCharge.Round(2))

	return BillBreakdown{
		UnitsConsumed: units,
		BillableUnits: billable,
		Amount:        amount,
	}, nil
}
