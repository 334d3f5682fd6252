package domain

// BehaviorLabel is a holder's overall trading-style classification over a period.
type BehaviorLabel string

const (
	LabelPureAccumulator      BehaviorLabel = "pure_accumulator"
	LabelPureSeller           BehaviorLabel = "pure_seller"
	LabelNetAccumulator       BehaviorLabel = "net_accumulator"
	LabelNetSeller            BehaviorLabel = "net_seller"
	LabelHighVolatilityTrader BehaviorLabel = "high_volatility_trader"
	LabelBalancedTrader       BehaviorLabel = "balanced_trader"
)

// BehaviorProfile summarizes a holder's full delta sequence within a period.
type BehaviorProfile struct {
	HolderID         string        `json:"holder_id"`
	HolderName       string        `json:"holder_name"`
	BuyDates         []Date        `json:"buy_dates"`
	SellDates        []Date        `json:"sell_dates"`
	TotalAccumulated int64         `json:"total_accumulated"`
	TotalReduced     int64         `json:"total_reduced"`
	NetChange        int64         `json:"net_change"`
	Volatility       float64       `json:"volatility"` // population stddev of deltas
	Label            BehaviorLabel `json:"label"`
}

// EventCount returns the number of directional events.
func (p *BehaviorProfile) EventCount() int { return len(p.BuyDates) + len(p.SellDates) }

// CorrelatedPair measures date overlap between two holders' buy/sell activity.
// HolderA sorts before HolderB.
type CorrelatedPair struct {
	HolderA              string  `json:"holder_a"`
	HolderB              string  `json:"holder_b"`
	Correlation          float64 `json:"correlation"`
	OverlappingBuyDates  []Date  `json:"overlapping_buy_dates"`
	OverlappingSellDates []Date  `json:"overlapping_sell_dates"`
}

// ActivityKind is the direction of a coordinated activity.
type ActivityKind string

const (
	ActivityBuying  ActivityKind = "buying"
	ActivitySelling ActivityKind = "selling"
)

// CoordinatedActivity records several holders acting in the same direction on the same date.
type CoordinatedActivity struct {
	Date         Date         `json:"date"`
	Kind         ActivityKind `json:"kind"`
	Participants []string     `json:"participants"` // sorted holder ids
}

// PatternKind names a suspicious-pattern rule.
type PatternKind string

const (
	PatternHighlyCorrelatedPair PatternKind = "highly_correlated_pair"
	PatternMassCoordination     PatternKind = "mass_coordination"
)

// SuspiciousPattern is a heuristic flag raised from correlation or coordination output.
type SuspiciousPattern struct {
	Kind        PatternKind `json:"kind"`
	Holders     []string    `json:"holders"`
	Dates       []Date      `json:"dates"`
	Score       float64     `json:"score"`
	Description string      `json:"description"`
}
