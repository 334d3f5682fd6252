package domain

// TraderType classifies a holder's buy/sell sequencing.
type TraderType string

const (
	TraderSmart       TraderType = "smart_trader"
	TraderSwing       TraderType = "swing_trader"
	TraderContrarian  TraderType = "contrarian"
	TraderAccumulator TraderType = "accumulator"
	TraderDistributor TraderType = "distributor"
	TraderHolder      TraderType = "holder"
)

// TimingProfile rates how a holder's trade sequence aligns with its own ownership peaks.
// The score is a heuristic on a 0-100 scale, not a ground-truth measure.
type TimingProfile struct {
	HolderID          string     `json:"holder_id"`
	HolderName        string     `json:"holder_name"`
	TraderType        TraderType `json:"trader_type"`
	TimingScore       int        `json:"timing_score"`
	BuyCount          int        `json:"buy_count"`
	SellCount         int        `json:"sell_count"`
	InitialPercentage float64    `json:"initial_percentage"`
	MaxPercentage     float64    `json:"max_percentage"`
	FinalPercentage   float64    `json:"final_percentage"`
	EntryPoints       []Date     `json:"entry_points"`
	ExitPoints        []Date     `json:"exit_points"`
}

// Sentiment labels a market sentiment bucket.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// SentimentPoint is one bucket of the market sentiment series.
type SentimentPoint struct {
	Period    string    `json:"period"`
	Buyers    int       `json:"buyers"`
	Sellers   int       `json:"sellers"`
	NetChange int64     `json:"net_change"`
	Ratio     float64   `json:"ratio"` // (buyers - sellers) / (buyers + sellers)
	Sentiment Sentiment `json:"sentiment"`
}
