package domain

// PricePoint is one daily sample of a coin's price.
// Date is a provider-locale calendar label ("dd/mm/yyyy"), not a timestamp;
// order points by parsing it, never by comparing strings.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// PriceSeries is the cached history of a single coin in fetch order.
type PriceSeries []PricePoint

// Clone returns a copy that can be handed out without exposing cache memory.
func (s PriceSeries) Clone() PriceSeries {
	if s == nil {
		return nil
	}
	out := make(PriceSeries, len(s))
	copy(out, s)
	return out
}
