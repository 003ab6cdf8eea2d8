package domain

import "github.com/shopspring/decimal"

// ============================================================
// Cash-flow aggregation
// ============================================================

// MonthlyBucket is one calendar-month window of aggregated movements.
// Buckets are always dense: a month with no matching records still appears
// with zero sums, so charts render a continuous series.
type MonthlyBucket struct {
	PeriodLabel string          `json:"period_label"` // YYYY-MM
	Inflows     decimal.Decimal `json:"inflows"`
	Outflows    decimal.Decimal `json:"outflows"`
	Net         decimal.Decimal `json:"net"`
}

// ProjectedBucket extends MonthlyBucket with overdue-risk annotations for
// forward-looking aggregation over unsettled records.
type ProjectedBucket struct {
	MonthlyBucket
	OverdueInflowCount  int `json:"overdue_inflow_count"`
	OverdueOutflowCount int `json:"overdue_outflow_count"`
}

// CashFlowReport is returned by GET /v1/reports/cashflow.
type CashFlowReport struct {
	From            string          `json:"from"` // YYYY-MM
	To              string          `json:"to"`
	Buckets         []MonthlyBucket `json:"buckets"`
	TotalInflows    decimal.Decimal `json:"total_inflows"`
	TotalOutflows   decimal.Decimal `json:"total_outflows"`
	Net             decimal.Decimal `json:"net"`
	ExcludedRecords int             `json:"excluded_records"`
}

// ProjectionReport is returned by GET /v1/reports/projection.
type ProjectionReport struct {
	From            string            `json:"from"`
	To              string            `json:"to"`
	Buckets         []ProjectedBucket `json:"buckets"`
	ProjectedNet    decimal.Decimal   `json:"projected_net"`
	ExcludedRecords int               `json:"excluded_records"`
}

// ============================================================
// Budgets
// ============================================================

// Budget variance tiers.
const (
	TierOK        = "ok"
	TierNearLimit = "near_limit"
	TierExceeded  = "exceeded"
)

// DefaultAlertThresholdPct is applied when a budget doesn't set its own.
const DefaultAlertThresholdPct = 80.0

// CategoryBudget is a monthly spending ceiling for one expense category.
type CategoryBudget struct {
	ID                string          `json:"id"`
	Category          string          `json:"category"`
	MonthlyLimit      decimal.Decimal `json:"monthly_limit"`
	AlertThresholdPct float64         `json:"alert_threshold_pct"`
	IsActive          bool            `json:"is_active"`
}

// BudgetAssessment compares actual category spend against its budget ceiling.
type BudgetAssessment struct {
	Category          string          `json:"category"`
	PeriodLabel       string          `json:"period_label"`
	BudgetedAmount    decimal.Decimal `json:"budgeted_amount"`
	ActualAmount      decimal.Decimal `json:"actual_amount"`
	PercentUsed       float64         `json:"percent_used"`
	AlertThresholdPct float64         `json:"alert_threshold_pct"`
	Tier              string          `json:"tier"`
}

// ============================================================
// Dashboard
// ============================================================

// DashboardSummary is the aggregated view for the frontend's main screen.
type DashboardSummary struct {
	CurrentMonth    MonthlyBucket      `json:"current_month"`
	Trailing        []MonthlyBucket    `json:"trailing"`
	Upcoming        []ProjectedBucket  `json:"upcoming"`
	Budgets         []BudgetAssessment `json:"budgets"`
	ActiveRentals   int                `json:"active_rentals"`
	ActiveSales     int                `json:"active_sales"`
	OverdueCount    int                `json:"overdue_count"`
	OverdueTotal    decimal.Decimal    `json:"overdue_total"`
	ExcludedRecords int                `json:"excluded_records"`
}
