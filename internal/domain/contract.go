package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract kinds.
const (
	ContractKindRental = "rental"
	ContractKindSale   = "sale"
)

// Contract statuses.
const (
	ContractStatusDraft  = "draft"
	ContractStatusActive = "active"
	ContractStatusClosed = "closed"
)

// ComponentAmounts holds the named monetary components of a contract.
// Absent components are zero and simply don't contribute to the total.
type ComponentAmounts struct {
	BaseAmount  decimal.Decimal `json:"base_amount"`
	CondoFee    decimal.Decimal `json:"condo_fee"`
	PropertyTax decimal.Decimal `json:"property_tax"`
	Utilities   decimal.Decimal `json:"utilities"`
	Insurance   decimal.Decimal `json:"insurance"`
}

// Total sums all declared components.
func (c ComponentAmounts) Total() decimal.Decimal {
	return c.BaseAmount.
		Add(c.CondoFee).
		Add(c.PropertyTax).
		Add(c.Utilities).
		Add(c.Insurance)
}

// Contract is a recurring financial agreement: a property rental or a sale
// negotiation paid in installments.
type Contract struct {
	ID                string           `json:"id"`
	Kind              string           `json:"kind"`
	Status            string           `json:"status"`
	PropertyID        string           `json:"property_id,omitempty"`
	CounterpartyName  string           `json:"counterparty_name,omitempty"`
	StartDate         string           `json:"start_date"` // YYYY-MM-DD
	InstallmentCount  int              `json:"installment_count"`
	DueDay            int              `json:"due_day"` // 1-31, clamped to month length
	Components        ComponentAmounts `json:"components"`
	ScheduleGenerated bool             `json:"schedule_generated"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Installment is one scheduled due amount within a contract's payment plan.
type Installment struct {
	ID             string          `json:"id"`
	ContractID     string          `json:"contract_id"`
	SequenceNumber int             `json:"sequence_number"` // 1-based
	PeriodLabel    string          `json:"period_label"`    // YYYY-MM
	DueDate        string          `json:"due_date"`        // YYYY-MM-DD
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         string          `json:"status"`
}
