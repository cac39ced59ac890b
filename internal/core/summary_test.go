package core

import "testing"

func summaryInstances() []Instance {
	rent := recurringTemplate(15, NewDate(2025, 1, 15), Monthly)
	rent.CategoryID = 1

	dinner := Template{
		ID: 20, Title: "Cena", Amount: Money{Cents: 4200},
		Date: NewDate(2025, 6, 15), IsExpense: true, CategoryID: 2, Person: "alice",
	}
	salary := Template{
		ID: 21, Title: "Stipendio", Amount: Money{Cents: 200000},
		Date: NewDate(2025, 6, 27), Person: "alice",
	}
	stale := Template{
		ID: 22, Title: "Vecchia", Amount: Money{Cents: 999},
		Date: NewDate(2025, 5, 1), IsExpense: true, Person: PersonShared,
	}

	return []Instance{
		{Template: rent, InstanceDate: rent.Date},                              // base, skipped
		{Template: rent, InstanceDate: NewDate(2025, 6, 15), RecurringInstance: true},
		{Template: dinner, InstanceDate: dinner.Date},
		{Template: salary, InstanceDate: salary.Date},
		{Template: stale, InstanceDate: stale.Date}, // out of month, skipped
	}
}

func TestSummarize(t *testing.T) {
	names := map[int64]string{1: "Casa", 2: "Divertimento"}
	ov := Summarize(2025, 6, summaryInstances(), names)

	if ov.Expense.Cents != 89200 {
		t.Errorf("Expense = %d, want 89200", ov.Expense.Cents)
	}
	if ov.Income.Cents != 200000 {
		t.Errorf("Income = %d, want 200000", ov.Income.Cents)
	}
	if ov.Net.Cents != 110800 {
		t.Errorf("Net = %d, want 110800", ov.Net.Cents)
	}

	if len(ov.ByCategory) != 2 {
		t.Fatalf("ByCategory = %+v, want 2 entries", ov.ByCategory)
	}
	// First-seen order: rent's category before dinner's.
	if ov.ByCategory[0].Name != "Casa" || ov.ByCategory[0].Amount.Cents != 85000 {
		t.Errorf("ByCategory[0] = %+v", ov.ByCategory[0])
	}
	if ov.ByCategory[1].Name != "Divertimento" || ov.ByCategory[1].Amount.Cents != 4200 {
		t.Errorf("ByCategory[1] = %+v", ov.ByCategory[1])
	}

	if len(ov.ByPerson) != 2 {
		t.Fatalf("ByPerson = %+v, want 2 entries", ov.ByPerson)
	}
	if ov.ByPerson[0].Person != PersonShared || ov.ByPerson[0].Amount.Cents != -85000 {
		t.Errorf("ByPerson[0] = %+v", ov.ByPerson[0])
	}
	if ov.ByPerson[1].Person != "alice" || ov.ByPerson[1].Amount.Cents != 195800 {
		t.Errorf("ByPerson[1] = %+v", ov.ByPerson[1])
	}
}

func TestSummarize_Calendar(t *testing.T) {
	ov := Summarize(2025, 6, summaryInstances(), nil)

	// Two buckets: the 15th (rent + dinner) and the 27th (salary).
	if len(ov.Calendar) != 2 {
		t.Fatalf("Calendar = %+v, want 2 days", ov.Calendar)
	}
	d15 := ov.Calendar[0]
	if d15.Day != 15 || d15.Expense.Cents != 89200 || d15.Count != 2 {
		t.Errorf("day 15 = %+v", d15)
	}
	d27 := ov.Calendar[1]
	if d27.Day != 27 || d27.Income.Cents != 200000 || d27.Count != 1 {
		t.Errorf("day 27 = %+v", d27)
	}
}

func TestSummarize_UnknownCategory(t *testing.T) {
	ov := Summarize(2025, 6, summaryInstances(), map[int64]string{})
	for _, ca := range ov.ByCategory {
		if ca.Name != "" {
			t.Errorf("unknown category should have empty name, got %q", ca.Name)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	ov := Summarize(2025, 6, nil, nil)
	if ov.Expense.Cents != 0 || ov.Income.Cents != 0 || ov.Net.Cents != 0 {
		t.Errorf("empty summary has totals: %+v", ov)
	}
	if len(ov.ByCategory) != 0 || len(ov.ByPerson) != 0 || len(ov.Calendar) != 0 {
		t.Errorf("empty summary has buckets: %+v", ov)
	}
}
