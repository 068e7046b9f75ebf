// Package pricing computes checkout amounts. Everything here is pure and
// deterministic; the same cart snapshot always prices identically whether it
// is quoted for display, for checkout preview, or re-quoted at order commit.
package pricing

// Amounts in VND, which has no minor unit.
const (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = 500000
	// FlatShippingFee applies below the threshold.
	FlatShippingFee = 30000
	// VAT is 10%, applied to the subtotal.
	vatNumerator   = 10
	vatDenominator = 100
)

// Line is the priced portion of a cart line.
type Line struct {
	UnitPrice int64
	Quantity  int
}

// Quote is a full price breakdown for a cart snapshot.
type Quote struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

// Subtotal sums unit price times quantity over all lines.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.UnitPrice * int64(l.Quantity)
	}
	return sum
}

// ShippingFee is free at or above the threshold, flat below it.
func ShippingFee(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// Tax is 10% VAT rounded half-up to the smallest currency unit.
func Tax(subtotal int64) int64 {
	return (subtotal*vatNumerator + vatDenominator/2) / vatDenominator
}

// QuoteLines prices a cart snapshot.
func QuoteLines(lines []Line) Quote {
	return QuoteSubtotal(Subtotal(lines))
}

// QuoteSubtotal prices an already-computed subtotal.
func QuoteSubtotal(subtotal int64) Quote {
	shipping := ShippingFee(subtotal)
	tax := Tax(subtotal)
	return Quote{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Tax:         tax,
		Total:       subtotal + shipping + tax,
	}
}
