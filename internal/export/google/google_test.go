package google

import (
	"testing"

	"bilancio/internal/core"
)

func TestBuildRows(t *testing.T) {
	sched := core.MonthSchedule{
		Year:  2025,
		Month: 6,
		Instances: []core.Instance{
			{
				// Base record of a recurring template, must not be exported.
				Template: core.Template{
					ID: 15, Title: "Affitto", Amount: core.Money{Cents: 85000},
					Date: core.NewDate(2025, 1, 15), IsExpense: true,
					CategoryID: 1, Person: core.PersonShared, Recurring: true,
					Interval: core.Monthly,
				},
				InstanceDate: core.NewDate(2025, 1, 15),
			},
			{
				Template: core.Template{
					ID: 15, Title: "Affitto", Amount: core.Money{Cents: 85000},
					Date: core.NewDate(2025, 1, 15), IsExpense: true,
					CategoryID: 1, Person: core.PersonShared, Recurring: true,
					Interval: core.Monthly, Paid: true,
				},
				InstanceDate:      core.NewDate(2025, 6, 15),
				RecurringInstance: true,
			},
			{
				Template: core.Template{
					ID: 21, Title: "Stipendio", Amount: core.Money{Cents: 200000},
					Date: core.NewDate(2025, 6, 27), Person: "alice",
				},
				InstanceDate: core.NewDate(2025, 6, 27),
			},
		},
		Overview: core.MonthOverview{
			Year: 2025, Month: 6,
			Income:  core.Money{Cents: 200000},
			Expense: core.Money{Cents: 85000},
			Net:     core.Money{Cents: 115000},
			ByCategory: []core.CategoryAmount{
				{CategoryID: 1, Name: "Casa", Amount: core.Money{Cents: 85000}},
			},
		},
	}

	rows := buildRows(sched)

	// Header + 2 instance rows + blank + 4 totals rows.
	if len(rows) != 8 {
		t.Fatalf("len(rows) = %d, want 8", len(rows))
	}

	rent := rows[1]
	if rent[0] != 15 || rent[1] != "Affitto" || rent[2] != "Casa" {
		t.Errorf("rent row = %v", rent)
	}
	if rent[4] != 850.0 || rent[5] != "uscita" || rent[6] != "sì" {
		t.Errorf("rent row amounts = %v", rent)
	}

	salary := rows[2]
	if salary[1] != "Stipendio" || salary[5] != "entrata" || salary[6] != "no" {
		t.Errorf("salary row = %v", salary)
	}

	if rows[4][0] != "Entrate" || rows[4][1] != 2000.0 {
		t.Errorf("income total row = %v", rows[4])
	}
}
