package overrides

import (
	"strconv"

	"bilancio/internal/core"
)

// Resolver applies stored per-month overrides to expanded instances.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve produces the final display-ready instance list. For every
// instance of a recurring template it consults the store keyed by the
// occurrence's month: a deleted override drops the instance entirely, a
// paid override replaces the template's base paid status. Non-recurring
// instances pass through untouched.
//
// Input order is preserved minus dropped elements, and resolving an
// already-resolved list against the same store state yields an identical
// list. Malformed or unreadable override values fall back to the
// template's base values rather than failing.
func (r *Resolver) Resolve(instances []core.Instance) []core.Instance {
	out := make([]core.Instance, 0, len(instances))
	for _, inst := range instances {
		if !inst.Recurring {
			out = append(out, inst)
			continue
		}

		monthKey := core.MonthKey(inst.InstanceDate.Time)
		if r.deleted(inst.ID, monthKey) {
			continue
		}
		if paid, ok := r.paidOverride(inst.ID, monthKey); ok {
			inst.Paid = paid
		}
		out = append(out, inst)
	}
	return out
}

func (r *Resolver) paidOverride(transactionID int64, monthKey string) (paid, ok bool) {
	raw, ok, err := r.store.Get(PaidKey(transactionID, monthKey))
	if err != nil || !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		// Malformed value: treat as absent.
		return false, false
	}
	return v, true
}

func (r *Resolver) deleted(transactionID int64, monthKey string) bool {
	raw, ok, err := r.store.Get(DeletedKey(transactionID, monthKey))
	if err != nil || !ok {
		return false
	}
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
