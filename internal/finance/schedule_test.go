package finance_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/finance"
)

func rentalContract(start string, count, dueDay int) *domain.Contract {
	return &domain.Contract{
		ID:               "ct-1",
		Kind:             domain.ContractKindRental,
		StartDate:        start,
		InstallmentCount: count,
		DueDay:           dueDay,
		Components: domain.ComponentAmounts{
			BaseAmount: decimal.NewFromInt(1000),
			CondoFee:   decimal.NewFromInt(200),
		},
	}
}

func TestGenerateSchedule_LengthAndTotals(t *testing.T) {
	schedule, err := finance.GenerateSchedule(rentalContract("2024-01-15", 3, 10))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(schedule) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(schedule))
	}

	wantDues := []string{"2024-01-10", "2024-02-10", "2024-03-10"}
	for i, inst := range schedule {
		if inst.SequenceNumber != i+1 {
			t.Errorf("installment %d: expected sequence %d, got %d", i, i+1, inst.SequenceNumber)
		}
		if inst.DueDate != wantDues[i] {
			t.Errorf("installment %d: expected due date %s, got %s", i, wantDues[i], inst.DueDate)
		}
		if !inst.TotalAmount.Equal(decimal.NewFromInt(1200)) {
			t.Errorf("installment %d: expected total 1200, got %s", i, inst.TotalAmount)
		}
		if inst.Status != domain.StatusPending {
			t.Errorf("installment %d: expected status pending, got %s", i, inst.Status)
		}
	}
}

func TestGenerateSchedule_MonotonicMonths(t *testing.T) {
	schedule, err := finance.GenerateSchedule(rentalContract("2023-11-01", 6, 5))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wantPeriods := []string{"2023-11", "2023-12", "2024-01", "2024-02", "2024-03", "2024-04"}
	prev := ""
	for i, inst := range schedule {
		if inst.PeriodLabel != wantPeriods[i] {
			t.Errorf("installment %d: expected period %s, got %s", i, wantPeriods[i], inst.PeriodLabel)
		}
		if inst.DueDate <= prev {
			t.Errorf("installment %d: due date %s not after previous %s", i, inst.DueDate, prev)
		}
		prev = inst.DueDate
	}
}

func TestGenerateSchedule_DayClamping(t *testing.T) {
	// Day 31 across Jan..Apr: 30-day months clamp to 30, February to 29 (leap).
	schedule, err := finance.GenerateSchedule(rentalContract("2024-01-01", 4, 31))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wantDues := []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}
	for i, inst := range schedule {
		if inst.DueDate != wantDues[i] {
			t.Errorf("installment %d: expected due date %s, got %s", i, wantDues[i], inst.DueDate)
		}
	}
}

func TestGenerateSchedule_NonLeapFebruary(t *testing.T) {
	schedule, err := finance.GenerateSchedule(rentalContract("2023-02-01", 1, 30))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if schedule[0].DueDate != "2023-02-28" {
		t.Errorf("expected due date 2023-02-28, got %s", schedule[0].DueDate)
	}
}

func TestGenerateSchedule_InvalidContract(t *testing.T) {
	cases := []struct {
		name     string
		contract *domain.Contract
	}{
		{"zero installments", rentalContract("2024-01-01", 0, 10)},
		{"negative installments", rentalContract("2024-01-01", -2, 10)},
		{"bad start date", rentalContract("not-a-date", 3, 10)},
		{"empty start date", rentalContract("", 3, 10)},
		{"due day too low", rentalContract("2024-01-01", 3, 0)},
		{"due day too high", rentalContract("2024-01-01", 3, 32)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := finance.GenerateSchedule(tc.contract)
			var invalid *domain.ErrInvalidContract
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidContract, got %v", err)
			}
		})
	}
}

func TestGenerateSchedule_AbsentComponentsDefaultToZero(t *testing.T) {
	c := rentalContract("2024-06-01", 1, 15)
	c.Components = domain.ComponentAmounts{BaseAmount: decimal.NewFromInt(2500)}

	schedule, err := finance.GenerateSchedule(c)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !schedule[0].TotalAmount.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("expected total 2500, got %s", schedule[0].TotalAmount)
	}
}
