package coingecko

import (
	"encoding/json"
	"fmt"

	"crypto_adda/internal/domain"
)

// MarketsParams are the query parameters of /coins/markets.
type MarketsParams struct {
	VsCurrency string
	Order      string
	PerPage    int
	Page       int
	Sparkline  bool
}

// PriceSample is one raw [timestamp, price] pair of /coins/{id}/market_chart.
type PriceSample struct {
	TimestampMS int64
	Price       float64
}

// UnmarshalJSON decodes the two element array form the API uses.
func (p *PriceSample) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("price sample: expected 2 values, got %d", len(pair))
	}
	p.TimestampMS = int64(pair[0])
	p.Price = pair[1]
	return nil
}

type marketChartResponse struct {
	Prices []PriceSample `json:"prices"`
}

// errorResponse covers both {"error": "..."} and {"status": {...}} bodies.
type errorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

func (e errorResponse) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Status.ErrorMessage
}

// coinDetailResponse is the subset of /coins/{id} the dashboard shows.
type coinDetailResponse struct {
	ID               string           `json:"id"`
	Symbol           string           `json:"symbol"`
	Name             string           `json:"name"`
	HashingAlgorithm string           `json:"hashing_algorithm"`
	GenesisDate      string           `json:"genesis_date"`
	MarketCapRank    int              `json:"market_cap_rank"`
	Image            domain.CoinImage `json:"image"`
	Description      struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage          []string `json:"homepage"`
		BlockchainSite    []string `json:"blockchain_site"`
		OfficialForumURL  []string `json:"official_forum_url"`
		TwitterScreenName string   `json:"twitter_screen_name"`
		SubredditURL      string   `json:"subreddit_url"`
	} `json:"links"`
	SentimentVotesUpPercentage   float64                 `json:"sentiment_votes_up_percentage"`
	SentimentVotesDownPercentage float64                 `json:"sentiment_votes_down_percentage"`
	MarketData                   domain.CoinMarketDetail `json:"market_data"`
}

// JSON nulls (genesis date, hashing algorithm, rank) decode to zero values.
func (r *coinDetailResponse) toDomain() *domain.CoinDetail {
	return &domain.CoinDetail{
		ID:                           r.ID,
		Symbol:                       r.Symbol,
		Name:                         r.Name,
		Image:                        r.Image,
		Description:                  r.Description.En,
		MarketCapRank:                r.MarketCapRank,
		HashingAlgorithm:             r.HashingAlgorithm,
		GenesisDate:                  r.GenesisDate,
		SentimentVotesUpPercentage:   r.SentimentVotesUpPercentage,
		SentimentVotesDownPercentage: r.SentimentVotesDownPercentage,
		Links: domain.CoinLinks{
			Homepage:          nonEmpty(r.Links.Homepage),
			BlockchainSite:    nonEmpty(r.Links.BlockchainSite),
			OfficialForumURL:  nonEmpty(r.Links.OfficialForumURL),
			TwitterScreenName: r.Links.TwitterScreenName,
			SubredditURL:      r.Links.SubredditURL,
		},
		MarketData: r.MarketData,
	}
}

// nonEmpty drops the blank padding entries the API puts into link lists.
func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
