package contracts

import "time"

// Company represents one listed company in the screening universe.
// Identity is the (ticker, exchange_short) pair; the same ticker can exist
// on several exchanges.
type Company struct {
	ID            int       `json:"id" db:"id"`
	Ticker        string    `json:"ticker" db:"ticker"`
	Name          string    `json:"name" db:"name"`
	Exchange      string    `json:"exchange" db:"exchange"`
	ExchangeShort string    `json:"exchange_short" db:"exchange_short"`
	Country       string    `json:"country" db:"country"`
	Sector        string    `json:"sector" db:"sector"`
	Industry      string    `json:"industry" db:"industry"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Key returns the natural identity of the company.
func (c *Company) Key() string {
	return c.Ticker + ":" + c.ExchangeShort
}
