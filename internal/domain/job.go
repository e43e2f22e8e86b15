package domain

// Job is the subset of a job the quote builder reads
type Job struct {
	ID          string         `json:"id" db:"id"`
	UserID      string         `json:"user_id" db:"user_id"`
	CustomerID  *string        `json:"customer_id" db:"customer_id"`
	Title       string         `json:"title" db:"title"`
	Description *string        `json:"description" db:"description"`
	XeroQuoteID *string        `json:"xero_quote_id" db:"xero_quote_id"`
	Customer    *Party         `json:"customer,omitempty"`
	Labour      []LabourLine   `json:"labour"`
	Materials   []MaterialLine `json:"materials"`
}

type LabourLine struct {
	ID          string  `json:"id" db:"id"`
	Description string  `json:"description" db:"description"`
	Hours       float64 `json:"hours" db:"hours"`
	Rate        float64 `json:"rate" db:"rate"`
}

type MaterialLine struct {
	ID          string  `json:"id" db:"id"`
	Description string  `json:"description" db:"description"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
}
