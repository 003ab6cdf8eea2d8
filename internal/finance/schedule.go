package finance

import (
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
)

// GenerateSchedule produces the full installment plan for a contract:
// one installment per month, starting at the start date's month, due on the
// contract's due day. Requesting day 31 in a 30-day month yields day 30 —
// calendar-correct clamping, never a rollover into the next month.
//
// The function is pure and does not check the contract's schedule_generated
// flag; guarding against duplicate generation is the caller's responsibility.
func GenerateSchedule(c *domain.Contract) ([]domain.Installment, error) {
	if c.InstallmentCount < 1 {
		return nil, &domain.ErrInvalidContract{Field: "installment_count", Reason: "must be at least 1"}
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return nil, &domain.ErrInvalidContract{Field: "due_day", Reason: "must be between 1 and 31"}
	}
	start, ok := ParseDate(c.StartDate)
	if !ok {
		return nil, &domain.ErrInvalidContract{Field: "start_date", Reason: "not a valid calendar date"}
	}

	total := c.Components.Total()

	installments := make([]domain.Installment, 0, c.InstallmentCount)
	for i := 0; i < c.InstallmentCount; i++ {
		month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		due := time.Date(month.Year(), month.Month(), clampDay(month, c.DueDay), 0, 0, 0, 0, time.UTC)

		installments = append(installments, domain.Installment{
			ContractID:     c.ID,
			SequenceNumber: i + 1,
			PeriodLabel:    month.Format(PeriodLayout),
			DueDate:        due.Format(DateLayout),
			TotalAmount:    total,
			Status:         domain.StatusPending,
		})
	}
	return installments, nil
}

// clampDay limits day to the last valid day of month's calendar month.
func clampDay(month time.Time, day int) int {
	last := time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
