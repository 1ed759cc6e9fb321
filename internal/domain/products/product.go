// Package products holds the canonical product representation exchanged with
// the logistics provider.
package products

import (
	"github.com/shopspring/decimal"
)

// Provider units: weights travel as kilograms, dimensions as centimetres.
// The connector keeps grams and millimetres internally.
const (
	gramsPerKilogram         = 1000
	millimetresPerCentimetre = 10
)

// Product is the canonical in-memory representation of a remote product.
// Stock fields are read-only: the provider is the source of truth for them.
type Product struct {
	// InternalID is assigned by the provider
	InternalID string
	// SKU is the caller-assigned reference. Renaming it requires a
	// delete-old plus create-new pass against the provider.
	SKU    string
	Label  string
	Active bool

	WeightGrams int
	HeightMM    int
	LengthMM    int
	WidthMM     int

	StockAvailable int
	StockPhysical  int
	StockOnOrder   int

	PriceSell decimal.Decimal
	PriceBuy  decimal.Decimal
}

// WeightKilograms converts the stored weight to the provider unit.
// The second return value is false when the weight is unset: the provider
// distinguishes "unset" from "zero", so zero weights are omitted outbound.
func (p *Product) WeightKilograms() (decimal.Decimal, bool) {
	if p.WeightGrams == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(p.WeightGrams)).Div(decimal.NewFromInt(gramsPerKilogram)), true
}

// DimensionsCentimetres converts the stored dimensions to the provider
// unit. A zero dimension is reported as unset.
func (p *Product) DimensionsCentimetres() (height, length, width decimal.Decimal, set bool) {
	if p.HeightMM == 0 && p.LengthMM == 0 && p.WidthMM == 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero, false
	}
	div := decimal.NewFromInt(millimetresPerCentimetre)
	return decimal.NewFromInt(int64(p.HeightMM)).Div(div),
		decimal.NewFromInt(int64(p.LengthMM)).Div(div),
		decimal.NewFromInt(int64(p.WidthMM)).Div(div),
		true
}
