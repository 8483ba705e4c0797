package domain

// CurrencyMap maps a lower-case currency code ("usd", "eur", ...) to a value.
type CurrencyMap map[string]float64

// CoinDetail is the per-coin view from the detail endpoint.
// It carries multi-currency market data plus descriptive metadata.
type CoinDetail struct {
	ID                           string           `json:"id"`
	Symbol                       string           `json:"symbol"`
	Name                         string           `json:"name"`
	Image                        CoinImage        `json:"image"`
	Description                  string           `json:"description"`
	MarketCapRank                int              `json:"market_cap_rank"`
	HashingAlgorithm             string           `json:"hashing_algorithm"`
	GenesisDate                  string           `json:"genesis_date"`
	SentimentVotesUpPercentage   float64          `json:"sentiment_votes_up_percentage"`
	SentimentVotesDownPercentage float64          `json:"sentiment_votes_down_percentage"`
	Links                        CoinLinks        `json:"links"`
	MarketData                   CoinMarketDetail `json:"market_data"`
}

type CoinImage struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

type CoinLinks struct {
	Homepage          []string `json:"homepage"`
	BlockchainSite    []string `json:"blockchain_site"`
	OfficialForumURL  []string `json:"official_forum_url"`
	TwitterScreenName string   `json:"twitter_screen_name"`
	SubredditURL      string   `json:"subreddit_url"`
}

// CoinMarketDetail holds the nested market data of a CoinDetail.
type CoinMarketDetail struct {
	CurrentPrice            CurrencyMap       `json:"current_price"`
	MarketCap               CurrencyMap       `json:"market_cap"`
	High24h                 CurrencyMap       `json:"high_24h"`
	Low24h                  CurrencyMap       `json:"low_24h"`
	TotalVolume             CurrencyMap       `json:"total_volume"`
	FullyDilutedValuation   CurrencyMap       `json:"fully_diluted_valuation"`
	ATH                     CurrencyMap       `json:"ath"`
	ATHDate                 map[string]string `json:"ath_date"`
	ATL                     CurrencyMap       `json:"atl"`
	ATLDate                 map[string]string `json:"atl_date"`
	PriceChangePercentage7d float64           `json:"price_change_percentage_7d"`
	TotalSupply             *float64          `json:"total_supply"`
	CirculatingSupply       float64           `json:"circulating_supply"`
	MaxSupply               *float64          `json:"max_supply"`
}

// PriceIn returns the current price in the given currency.
func (d *CoinDetail) PriceIn(currency string) (float64, bool) {
	v, ok := d.MarketData.CurrentPrice[currency]
	return v, ok
}
