package domain

// Coin is a market summary row as returned by the coin list endpoint.
// The cached list is replaced wholesale on every successful fetch.
type Coin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            int      `json:"market_cap_rank"`
	TotalVolume              float64  `json:"total_volume"`
	High24h                  float64  `json:"high_24h"`
	Low24h                   float64  `json:"low_24h"`
	CirculatingSupply        float64  `json:"circulating_supply"`
	TotalSupply              *float64 `json:"total_supply"`
	MaxSupply                *float64 `json:"max_supply"` // nil for uncapped coins
	FullyDilutedValuation    *float64 `json:"fully_diluted_valuation"`
	ATH                      float64  `json:"ath"`
	ATHDate                  string   `json:"ath_date"`
	ATL                      float64  `json:"atl"`
	ATLDate                  string   `json:"atl_date"`
	LastUpdated              string   `json:"last_updated"`
}

// ChangeDirection returns "positive", "negative", or "neutral" for the 24h change.
func (c *Coin) ChangeDirection() string {
	switch {
	case c.PriceChangePercentage24h > 0:
		return "positive"
	case c.PriceChangePercentage24h < 0:
		return "negative"
	default:
		return "neutral"
	}
}

// FindCoin returns the coin with the given id from a list.
func FindCoin(coins []Coin, id string) (Coin, bool) {
	for _, c := range coins {
		if c.ID == id {
			return c, true
		}
	}
	return Coin{}, false
}
