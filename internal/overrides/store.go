// Package overrides implements the per-month exception mechanism for
// recurring transactions: a single authoritative key scheme over a durable
// key/value store, plus the resolver that applies stored paid and deleted
// overrides to expanded instances.
package overrides

import (
	"fmt"
	"strconv"
	"strings"
)

// Aspects name the override dimensions of a transaction template.
const (
	AspectPaid    = "paid"
	AspectDeleted = "deleted"
)

// Store is a durable, single-writer key/value store for per-month overrides.
// Keys are opaque strings built by PaidKey and DeletedKey. Values round-trip
// exactly: a Get immediately after Set observes the written value. Writes are
// last-write-wins; no atomicity across keys is guaranteed or required.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error

	// ListKeys returns all stored keys with the given prefix, sorted.
	ListKeys(prefix string) ([]string, error)
}

// PaidKey builds the override key for the paid status of one template in
// one month.
func PaidKey(transactionID int64, monthKey string) string {
	return fmt.Sprintf("%s_%d_%s", AspectPaid, transactionID, monthKey)
}

// DeletedKey builds the override key for the deleted status of one template
// in one month.
func DeletedKey(transactionID int64, monthKey string) string {
	return fmt.Sprintf("%s_%d_%s", AspectDeleted, transactionID, monthKey)
}

// ParseKey splits an override key back into aspect, transaction ID and
// month key.
func ParseKey(key string) (aspect string, transactionID int64, monthKey string, err error) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 {
		return "", 0, "", fmt.Errorf("malformed override key %q", key)
	}
	if parts[0] != AspectPaid && parts[0] != AspectDeleted {
		return "", 0, "", fmt.Errorf("unknown override aspect %q", parts[0])
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, "", fmt.Errorf("malformed transaction id in key %q", key)
	}
	return parts[0], id, parts[2], nil
}

// SetPaid records a per-month paid override for a template.
func SetPaid(s Store, transactionID int64, monthKey string, paid bool) error {
	return s.Set(PaidKey(transactionID, monthKey), strconv.FormatBool(paid))
}

// ClearPaid removes a per-month paid override, falling back to the
// template's base paid status.
func ClearPaid(s Store, transactionID int64, monthKey string) error {
	return s.Remove(PaidKey(transactionID, monthKey))
}

// MarkDeleted hides a single occurrence of a recurring template for one
// month. Other months are unaffected.
func MarkDeleted(s Store, transactionID int64, monthKey string) error {
	return s.Set(DeletedKey(transactionID, monthKey), "true")
}

// RestoreDeleted undoes MarkDeleted for one month.
func RestoreDeleted(s Store, transactionID int64, monthKey string) error {
	return s.Remove(DeletedKey(transactionID, monthKey))
}

// PurgeTransaction removes every stored override for a template, across all
// months and aspects. Called when the template itself is deleted.
func PurgeTransaction(s Store, transactionID int64) error {
	for _, aspect := range []string{AspectPaid, AspectDeleted} {
		prefix := fmt.Sprintf("%s_%d_", aspect, transactionID)
		keys, err := s.ListKeys(prefix)
		if err != nil {
			return fmt.Errorf("list %s overrides: %w", aspect, err)
		}
		for _, k := range keys {
			if err := s.Remove(k); err != nil {
				return fmt.Errorf("remove override %s: %w", k, err)
			}
		}
	}
	return nil
}
