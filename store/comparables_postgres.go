package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rushteam/rentprice/core"
)

// DefaultListingsTable 是房源表名
const DefaultListingsTable = "listings"

// PostgresComparables 从房源表查询可比房源。
//
// 期望的列：id, price_per_month, bedrooms, bathrooms, property_type, city, postcode,
// status, is_flagged, created_at。
type PostgresComparables struct {
	pool  *pgxpool.Pool
	query string
}

// NewPostgresComparables 建立连接池。maxConns <= 0 时使用 4。
func NewPostgresComparables(ctx context.Context, dsn string, maxConns int, table string) (*PostgresComparables, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 4
	}
	cfg.MaxConns = int32(maxConns)
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresComparablesWithPool(pool, table), nil
}

// NewPostgresComparablesWithPool 使用已有连接池
func NewPostgresComparablesWithPool(pool *pgxpool.Pool, table string) *PostgresComparables {
	return &PostgresComparables{pool: pool, query: comparablesQuery(table)}
}

// comparablesQuery 生成查询语句，表名经过标识符转义
func comparablesQuery(table string) string {
	if table == "" {
		table = DefaultListingsTable
	}
	return fmt.Sprintf(`SELECT id::text, price_per_month::float8, bedrooms, COALESCE(bathrooms, 0),
       property_type, COALESCE(city, ''), COALESCE(postcode, ''), created_at
  FROM %s
 WHERE property_type = $1
   AND bedrooms = $2
   AND status = 'active'
   AND NOT is_flagged
 ORDER BY created_at DESC
 LIMIT $3`, pgx.Identifier{table}.Sanitize())
}

func (p *PostgresComparables) Find(ctx context.Context, propertyType string, bedrooms int, limit int) ([]core.ComparableListing, error) {
	rows, err := p.pool.Query(ctx, p.query, propertyType, bedrooms, limit)
	if err != nil {
		return nil, fmt.Errorf("query comparables: %w", err)
	}
	comps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ComparableListing, error) {
		var c core.ComparableListing
		err := row.Scan(&c.ID, &c.PricePerMonth, &c.Bedrooms, &c.Bathrooms,
			&c.PropertyType, &c.City, &c.Postcode, &c.ListedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan comparables: %w", err)
	}
	return comps, nil
}

func (p *PostgresComparables) Close() {
	p.pool.Close()
}

var _ core.ComparablesProvider = (*PostgresComparables)(nil)
