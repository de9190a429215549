package interaction

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// Merge computes the next state of a pair's record from the current record
// (nil when the pair has none yet) and an incoming signal.
//
// Precedence: a purchase record never changes type again; only purchase-type
// signals mutate its value or stars. View and add_to_cart records are replaced
// by whatever the incoming signal says, except that repeated add_to_cart
// signals accumulate quantity.
//
// Merge is pure: timestamps and identity fields are left to the store.
func Merge(existing *Record, s Signal) Record {
	var next Record
	if existing != nil {
		next = *existing
	}
	target := s.Kind.RecordType()

	switch {
	case existing == nil:
		next.InteractionType = target
		switch target {
		case KindView:
			next.Value = decimal.Zero
		case KindAddToCart:
			next.Value = quantity(s.Value)
		case KindPurchase:
			next.Value = quantity(s.Value)
			applyStars(&next, s)
		}

	case existing.InteractionType == KindPurchase:
		if target == KindPurchase {
			next.Value = existing.Value.Add(purchaseIncrement(s))
			applyStars(&next, s)
		}

	default:
		switch target {
		case KindView:
			next.Value = decimal.Zero
		case KindAddToCart:
			if existing.InteractionType == KindAddToCart {
				next.Value = existing.Value.Add(quantity(s.Value))
			} else {
				next.Value = quantity(s.Value)
			}
		case KindPurchase:
			next.Value = quantity(s.Value)
			applyStars(&next, s)
		}
		next.InteractionType = target
	}

	if s.SessionID != "" {
		next.SessionID = s.SessionID
	}
	if s.SearchQuery != "" {
		next.SearchQuery = s.SearchQuery
	}
	if next.Value.IsNegative() {
		next.Value = decimal.Zero
	}
	return next
}

// quantity is the event value, defaulting to 1 when absent or zero.
func quantity(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid || v.Decimal.Sign() <= 0 {
		return one
	}
	return v.Decimal
}

// purchaseIncrement is what a purchase-type signal adds to an existing
// purchase record. Reviews rate what was already bought and add nothing.
// An explicit value, zero included, is added as is; only an absent value
// counts as 1.
func purchaseIncrement(s Signal) decimal.Decimal {
	if s.Kind == KindReview {
		return decimal.Zero
	}
	if !s.Value.Valid {
		return one
	}
	return s.Value.Decimal
}

func applyStars(r *Record, s Signal) {
	if s.ReviewStars.Valid {
		r.ReviewStars = s.ReviewStars
	}
}
