package warehouses

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Unique constraint names from migrations/000001_create_warehouses.up.sql.
const (
	constraintCode = "warehouses_code_key"
	constraintName = "warehouses_name_key"
)

// PostgresRepository stores depots in the warehouses table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const listWarehouses = `
SELECT id, name, code, transfer_type, status
FROM warehouses
ORDER BY id`

func (r *PostgresRepository) List(ctx context.Context) ([]Warehouse, error) {
	rows, err := r.pool.Query(ctx, listWarehouses)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Warehouse, error) {
		var w Warehouse
		err := row.Scan(&w.ID, &w.Name, &w.Code, &w.TransferType, &w.Status)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan warehouses: %w", err)
	}
	return list, nil
}

const createWarehouse = `
INSERT INTO warehouses (name, code, transfer_type, status)
VALUES ($1, $2, $3, $4)
RETURNING id`

func (r *PostgresRepository) Create(ctx context.Context, w Warehouse) (Warehouse, error) {
	w, err := Normalize(w)
	if err != nil {
		return Warehouse{}, err
	}

	err = r.pool.QueryRow(ctx, createWarehouse, w.Name, w.Code, w.TransferType, w.Status).Scan(&w.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case constraintCode:
				return Warehouse{}, ErrDuplicateCode
			case constraintName:
				return Warehouse{}, ErrDuplicateName
			}
		}
		return Warehouse{}, fmt.Errorf("create warehouse: %w", err)
	}
	return w, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const warehouseStats = `
SELECT count(*),
       count(*) FILTER (WHERE status = 'Aktif'),
       count(*) FILTER (WHERE status = 'Pasif')
FROM warehouses`

func (r *PostgresRepository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.pool.QueryRow(ctx, warehouseStats).Scan(&s.Total, &s.Active, &s.Passive); err != nil {
		return Stats{}, fmt.Errorf("warehouse stats: %w", err)
	}
	return s, nil
}
