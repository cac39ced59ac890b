package overrides

import (
	"errors"
	"testing"

	"bilancio/internal/core"
)

type failingStore struct{}

func (failingStore) Get(string) (string, bool, error)  { return "", false, errors.New("io error") }
func (failingStore) Set(string, string) error          { return errors.New("io error") }
func (failingStore) Remove(string) error               { return errors.New("io error") }
func (failingStore) ListKeys(string) ([]string, error) { return nil, errors.New("io error") }

func recurringInstance(id int64, year, month, day int, paid bool) core.Instance {
	return core.Instance{
		Template: core.Template{
			ID: id, Title: "Affitto", Amount: core.Money{Cents: 85000},
			Date: core.NewDate(2025, 1, 15), IsExpense: true,
			Person: core.PersonShared, Recurring: true, Interval: core.Monthly,
			Paid: paid,
		},
		InstanceDate:      core.NewDate(year, month, day),
		RecurringInstance: true,
	}
}

func plainInstance(id int64, year, month, day int) core.Instance {
	return core.Instance{
		Template: core.Template{
			ID: id, Title: "Cena", Amount: core.Money{Cents: 4200},
			Date: core.NewDate(year, month, day), IsExpense: true,
			Person: core.PersonShared,
		},
		InstanceDate: core.NewDate(year, month, day),
	}
}

func TestResolve_PaidOverride(t *testing.T) {
	store := NewMemory()
	SetPaid(store, 15, "2025-06", true)
	r := NewResolver(store)

	got := r.Resolve([]core.Instance{
		recurringInstance(15, 2025, 6, 15, false),
		recurringInstance(15, 2025, 7, 15, false), // other month untouched
	})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].Paid {
		t.Error("June occurrence should be paid")
	}
	if got[1].Paid {
		t.Error("July occurrence should keep base status")
	}
}

func TestResolve_PaidOverrideFalseWins(t *testing.T) {
	store := NewMemory()
	SetPaid(store, 15, "2025-06", false)
	r := NewResolver(store)

	got := r.Resolve([]core.Instance{recurringInstance(15, 2025, 6, 15, true)})
	if got[0].Paid {
		t.Error("explicit false override should beat base paid=true")
	}
}

func TestResolve_DeletedDropsOccurrence(t *testing.T) {
	store := NewMemory()
	MarkDeleted(store, 15, "2025-06")
	// A deleted occurrence stays deleted even with a paid override present.
	SetPaid(store, 15, "2025-06", true)
	r := NewResolver(store)

	got := r.Resolve([]core.Instance{
		recurringInstance(15, 2025, 6, 15, false),
		recurringInstance(15, 2025, 7, 15, false),
	})

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].InstanceDate.Month() != 7 {
		t.Errorf("surviving occurrence = %v", got[0].InstanceDate)
	}
}

func TestResolve_NonRecurringPassThrough(t *testing.T) {
	store := NewMemory()
	// Overrides keyed to a non-recurring ID are never consulted.
	SetPaid(store, 20, "2025-06", true)
	MarkDeleted(store, 20, "2025-06")
	r := NewResolver(store)

	got := r.Resolve([]core.Instance{plainInstance(20, 2025, 6, 15)})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Paid {
		t.Error("non-recurring instance must ignore paid overrides")
	}
}

func TestResolve_MalformedValuesTreatedAsAbsent(t *testing.T) {
	store := NewMemory()
	store.Set(PaidKey(15, "2025-06"), "maybe")
	store.Set(DeletedKey(15, "2025-06"), "yes please")
	r := NewResolver(store)

	got := r.Resolve([]core.Instance{recurringInstance(15, 2025, 6, 15, false)})
	if len(got) != 1 {
		t.Fatal("malformed deleted value must not drop the occurrence")
	}
	if got[0].Paid {
		t.Error("malformed paid value must not change paid status")
	}
}

func TestResolve_StoreErrorsFallBack(t *testing.T) {
	r := NewResolver(failingStore{})

	got := r.Resolve([]core.Instance{recurringInstance(15, 2025, 6, 15, true)})
	if len(got) != 1 {
		t.Fatal("store errors must not drop instances")
	}
	if !got[0].Paid {
		t.Error("store errors must keep the base paid status")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	store := NewMemory()
	SetPaid(store, 15, "2025-06", true)
	MarkDeleted(store, 15, "2025-07")
	r := NewResolver(store)

	input := []core.Instance{
		recurringInstance(15, 2025, 6, 15, false),
		recurringInstance(15, 2025, 7, 15, false),
		plainInstance(20, 2025, 6, 20),
	}

	once := r.Resolve(input)
	twice := r.Resolve(once)

	if len(once) != len(twice) {
		t.Fatalf("len(once) = %d, len(twice) = %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("instance %d changed on second resolve", i)
		}
	}
}

func TestResolve_PreservesOrder(t *testing.T) {
	store := NewMemory()
	r := NewResolver(store)

	input := []core.Instance{
		plainInstance(1, 2025, 6, 3),
		recurringInstance(15, 2025, 6, 15, false),
		plainInstance(2, 2025, 6, 20),
	}
	got := r.Resolve(input)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 15 || got[2].ID != 2 {
		t.Errorf("order changed: %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
}
