package domain

// ExitStatus describes how a seller's position ended within a period.
type ExitStatus string

const (
	ExitStatusNone                  ExitStatus = ""
	ExitStatusPartial               ExitStatus = "Partial Exit"
	ExitStatusFull                  ExitStatus = "Full Exit"
	ExitStatusCompleteDisappearance ExitStatus = "Complete Disappearance"
)

// GrowthSentinel is reported as the percent change of any positive move from a zero baseline.
const GrowthSentinel = "100"

// BuyerSummary is one row of the active buyers report.
type BuyerSummary struct {
	HolderID          string  `json:"holder_id"`
	HolderName        string  `json:"holder_name"`
	InitialShares     int64   `json:"initial_shares"`
	FinalShares       int64   `json:"final_shares"`
	InitialPercentage float64 `json:"initial_percentage"`
	FinalPercentage   float64 `json:"final_percentage"`
	TotalIncrease     int64   `json:"total_increase"`
	PercentIncrease   string  `json:"percent_increase"` // decimal string, GrowthSentinel from a zero baseline
	BuyingDays        int     `json:"buying_days"`
	AverageIncrease   float64 `json:"average_increase"`
	FirstBuyDate      Date    `json:"first_buy_date"`
	LastBuyDate       Date    `json:"last_buy_date"`
}

// SellerSummary is one row of the active sellers report.
type SellerSummary struct {
	HolderID          string     `json:"holder_id"`
	HolderName        string     `json:"holder_name"`
	InitialShares     int64      `json:"initial_shares"`
	FinalShares       int64      `json:"final_shares"`
	InitialPercentage float64    `json:"initial_percentage"`
	FinalPercentage   float64    `json:"final_percentage"`
	TotalDecrease     int64      `json:"total_decrease"` // positive number of units sold
	PercentDecrease   string     `json:"percent_decrease"`
	SellingDays       int        `json:"selling_days"`
	AverageDecrease   float64    `json:"average_decrease"`
	ExitStatus        ExitStatus `json:"exit_status"`
	LastSeenDate      Date       `json:"last_seen_date"`
}

// EntrantSummary is one row of the new entrants report.
type EntrantSummary struct {
	HolderID          string  `json:"holder_id"`
	HolderName        string  `json:"holder_name"`
	EntryDate         Date    `json:"entry_date"`
	EntryShares       int64   `json:"entry_shares"`
	InitialShares     int64   `json:"initial_shares"` // always 0
	CurrentShares     int64   `json:"current_shares"`
	CurrentPercentage float64 `json:"current_percentage"`
	GrowthPercent     string  `json:"growth_percent"`
}

// PeriodSummary aggregates one report category over the requested period.
type PeriodSummary struct {
	Start       Date  `json:"start"`
	End         Date  `json:"end"`
	HolderCount int   `json:"holder_count"`
	TotalChange int64 `json:"total_change"` // absolute units moved
	TotalEvents int   `json:"total_events"`
	LargestMove int64 `json:"largest_move"`
}

// TrendPoint is one bucket of a trend series.
type TrendPoint struct {
	Period      string `json:"period"` // YYYY-MM-DD or YYYY-MM
	Holders     int    `json:"holders"`
	Events      int    `json:"events"`
	TotalChange int64  `json:"total_change"`
}
