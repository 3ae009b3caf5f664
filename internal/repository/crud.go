package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/horror-movies-api/internal/paging"
)

// crud implements the statements every entity table shares. Entity
// repositories hold one and add their own filtered queries on top.
type crud[T any] struct {
	pool    *pgxpool.Pool
	table   string
	columns []string // all columns, in scan order, id first
	writes  []string // columns written by insert/update, in values order
	orderBy string
	values  func(T) []any
	scan    func(pgx.Row) (T, error)
}

// condition is an equality filter on one column.
type condition struct {
	column string
	value  any
}

func (c crud[T]) selectList(prefix string) string {
	return columnList(prefix, c.columns)
}

func (c crud[T]) add(ctx context.Context, entity T) (T, error) {
	placeholders := make([]string, len(c.writes))
	for i := range c.writes {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		c.table, strings.Join(c.writes, ", "), strings.Join(placeholders, ", "), c.selectList(""))

	created, err := c.scan(c.pool.QueryRow(ctx, query, c.values(entity)...))
	if err != nil {
		var zero T
		return zero, translateError(err)
	}
	return created, nil
}

func (c crud[T]) getByID(ctx context.Context, id int64) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, c.selectList(""), c.table)
	entity, err := c.scan(c.pool.QueryRow(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return entity, nil
}

func (c crud[T]) update(ctx context.Context, id int64, entity T) (T, error) {
	sets := make([]string, 0, len(c.writes)+1)
	for i, col := range c.writes {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1 RETURNING %s`,
		c.table, strings.Join(sets, ", "), c.selectList(""))

	args := append([]any{id}, c.values(entity)...)
	updated, err := c.scan(c.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, translateError(err)
	}
	return updated, nil
}

func (c crud[T]) delete(ctx context.Context, id int64) error {
	tag, err := c.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, c.table), id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// list returns one page of rows matching every condition. The count and the
// page are read in one repeatable-read snapshot so the metadata matches the
// items. Pages past the end yield no items.
func (c crud[T]) list(ctx context.Context, conds []condition, page, pageSize int) (paging.List[T], error) {
	where := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}
	for _, cond := range conds {
		where = append(where, fmt.Sprintf("%s = %s", cond.column, arg(cond.value)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	result := paging.List[T]{Items: make([]T, 0)}
	txOpts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(ctx, c.pool, txOpts, func(tx pgx.Tx) error {
		var total int64
		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, c.table, whereClause)
		if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("count %s: %w", c.table, err)
		}
		result.Page = paging.New(total, page, pageSize)
		if result.Page.IsPastEnd() {
			return nil
		}

		var qb strings.Builder
		qb.WriteString("SELECT ")
		qb.WriteString(c.selectList(""))
		qb.WriteString(" FROM ")
		qb.WriteString(c.table)
		qb.WriteString(whereClause)
		qb.WriteString(" ORDER BY ")
		qb.WriteString(c.orderBy)
		qb.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", result.Page.Size, result.Page.Offset()))

		rows, err := tx.Query(ctx, qb.String(), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			entity, err := c.scan(rows)
			if err != nil {
				return err
			}
			result.Items = append(result.Items, entity)
		}
		return rows.Err()
	})
	if err != nil {
		return paging.List[T]{}, err
	}
	return result, nil
}

func columnList(prefix string, columns []string) string {
	if prefix == "" {
		return strings.Join(columns, ", ")
	}
	qualified := make([]string, len(columns))
	for i, col := range columns {
		qualified[i] = prefix + "." + col
	}
	return strings.Join(qualified, ", ")
}
