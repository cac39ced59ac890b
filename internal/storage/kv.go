package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// KV is the durable override store, a namespaced key/value table in the
// ledger database. It satisfies overrides.Store: reads observe the latest
// write to the same key, writes are last-write-wins, and no atomicity
// across keys is provided.
type KV struct {
	db *sql.DB
}

func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

func (kv *KV) Get(key string) (string, bool, error) {
	var value string
	err := kv.db.QueryRow(`SELECT value FROM overrides WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get override %s: %w", key, err)
	}
	return value, true, nil
}

func (kv *KV) Set(key, value string) error {
	_, err := kv.db.Exec(`
		INSERT INTO overrides (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("set override %s: %w", key, err)
	}
	return nil
}

func (kv *KV) Remove(key string) error {
	_, err := kv.db.Exec(`DELETE FROM overrides WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("remove override %s: %w", key, err)
	}
	return nil
}

func (kv *KV) ListKeys(prefix string) ([]string, error) {
	rows, err := kv.db.Query(
		`SELECT key FROM overrides WHERE key LIKE ? || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list overrides with prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan override key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
