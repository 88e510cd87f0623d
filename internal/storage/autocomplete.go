package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"troskovi/internal/core"
)

// CountShopNames aggregates distinct shop names with their usage counts.
func (r *SQLiteRepository) CountShopNames(ctx context.Context) ([]core.Suggestion, error) {
	return r.countColumn(ctx, "shop_name")
}

// CountProductDescriptions aggregates distinct product descriptions.
func (r *SQLiteRepository) CountProductDescriptions(ctx context.Context) ([]core.Suggestion, error) {
	return r.countColumn(ctx, "product_description")
}

// CountCategories aggregates distinct expense categories.
func (r *SQLiteRepository) CountCategories(ctx context.Context) ([]core.Suggestion, error) {
	return r.countColumn(ctx, "category")
}

func (r *SQLiteRepository) countColumn(ctx context.Context, col string) ([]core.Suggestion, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s, COUNT(*) FROM expenses WHERE %s <> '' GROUP BY %s`, col, col, col))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", col, err)
	}
	defer rows.Close()

	var out []core.Suggestion
	for rows.Next() {
		var s core.Suggestion
		if err := rows.Scan(&s.Value, &s.Count); err != nil {
			return nil, fmt.Errorf("scan %s suggestion: %w", col, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ExpenseTagSets returns the tag list of every expense. Tags are stored as a
// JSON array column, so counting happens in the service.
func (r *SQLiteRepository) ExpenseTagSets(ctx context.Context) ([][]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tags FROM expenses WHERE tags <> '[]'`)
	if err != nil {
		return nil, fmt.Errorf("list expense tags: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan tags: %w", err)
		}
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		out = append(out, tags)
	}
	return out, rows.Err()
}
