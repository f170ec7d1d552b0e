package contracts

import (
	"time"

	"github.com/guregu/null/v5"
)

// WatchlistItem is one watched company, joined with company descriptors
// and current snapshot values for display. Snapshot-derived fields are
// null for companies that have not been scored yet.
type WatchlistItem struct {
	ID          int        `json:"id" db:"id"`
	CompanyID   int        `json:"company_id" db:"company_id"`
	Note        string     `json:"note" db:"note"`
	TargetPrice null.Float `json:"target_price" db:"target_price"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	Ticker    string     `json:"ticker" db:"ticker"`
	Name      string     `json:"name" db:"name"`
	Exchange  string     `json:"exchange" db:"exchange"`
	Sector    string     `json:"sector" db:"sector"`
	LastPrice null.Float `json:"last_price" db:"last_price"`
	MarketCap null.Float `json:"market_cap" db:"market_cap"`
	PERatio   null.Float `json:"pe_ratio" db:"pe_ratio"`
}
