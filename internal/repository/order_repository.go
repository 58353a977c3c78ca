package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// OrderRepository persists the custom display order of the performance table
// as an ordered list of symbols, independent of any computed data.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository with the provided database connection.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetSymbolOrder returns the stored symbols by position.
// Returns an empty slice if no order has been saved.
func (r *OrderRepository) GetSymbolOrder(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT symbol FROM symbol_order ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbol_order table: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol_order row: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate symbol_order rows: %w", err)
	}
	return symbols, nil
}

// ReplaceSymbolOrder atomically replaces the stored order with symbols.
func (r *OrderRepository) ReplaceSymbolOrder(ctx context.Context, symbols []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbol_order`); err != nil {
		return fmt.Errorf("failed to clear symbol_order: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO symbol_order (position, symbol) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, symbol := range symbols {
		if _, err := stmt.ExecContext(ctx, i, symbol); err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit symbol order: %w", err)
	}
	return nil
}
