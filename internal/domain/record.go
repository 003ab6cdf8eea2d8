package domain

import "github.com/shopspring/decimal"

// Record status values. Set by the data provider; read-only to the engine.
const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusOverdue  = "overdue"
	StatusCanceled = "canceled"
)

// Record direction values. The sign of a movement is carried here,
// never by a negative amount.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// MonetaryRecord is any dated financial fact in the incorporator's ledger:
// a rent payment, a consortium contribution, a construction expense.
//
// Dates are ISO-8601 date strings (YYYY-MM-DD) or empty when absent. A paid
// record carries a settled_date; a pending or overdue record carries a
// due_date. Records violating that are excluded from aggregation, not errors.
type MonetaryRecord struct {
	ID          string          `json:"id"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	DueDate     string          `json:"due_date,omitempty"`
	SettledDate string          `json:"settled_date,omitempty"`
	ContractID  string          `json:"contract_id,omitempty"`
	PropertyID  string          `json:"property_id,omitempty"`
}

// Settled reports whether the record has been paid out or collected.
func (r *MonetaryRecord) Settled() bool {
	return r.Status == StatusPaid
}

// Open reports whether the record still awaits settlement.
func (r *MonetaryRecord) Open() bool {
	return r.Status == StatusPending || r.Status == StatusOverdue
}
