package model

// Fundamentals is a sparse set of financial metrics for one company.
// Unknown or unsupported symbols degrade to a minimal record (symbol,
// display name, zeroed metrics) rather than erroring.
type Fundamentals struct {
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	Sector          string  `json:"sector,omitempty"`
	MarketCap       float64 `json:"marketCap"`
	PERatio         float64 `json:"peRatio"`
	EPS             float64 `json:"eps"`
	RevenueTTM      float64 `json:"revenueTTM"`
	NetIncomeTTM    float64 `json:"netIncomeTTM"`
	GrossMargin     float64 `json:"grossMargin"`
	OperatingMargin float64 `json:"operatingMargin"`
	NetMargin       float64 `json:"netMargin"`
	DividendYield   float64 `json:"dividendYield"`
	Beta            float64 `json:"beta"`
	Week52High      float64 `json:"week52High"`
	Week52Low       float64 `json:"week52Low"`
	AvgVolume       int64   `json:"avgVolume"`
	Synthetic       bool    `json:"synthetic,omitempty"`
}
