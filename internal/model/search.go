package model

// InstrumentType classifies a search result.
type InstrumentType string

const (
	TypeStock  InstrumentType = "stock"
	TypeETF    InstrumentType = "etf"
	TypeCrypto InstrumentType = "crypto"
	TypeOther  InstrumentType = "other"
)

// SearchResult is one catalog entry matched by a search query.
type SearchResult struct {
	Symbol string         `json:"symbol"`
	Name   string         `json:"name"`
	Type   InstrumentType `json:"type"`
}
