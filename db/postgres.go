package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retana1885/Canave.ia/config"
)

const connectTimeout = 5 * time.Second

var (
	// ErrMissingCredentials is returned when a query needs the database but
	// the SQL_* environment variables are incomplete.
	ErrMissingCredentials = errors.New("faltan credenciales SQL en secrets/env (SQL_SERVER, SQL_DATABASE, SQL_USER, SQL_PASSWORD)")

	// ErrQueryNotAllowed rejects statement text outside the read-only whitelist.
	ErrQueryNotAllowed = errors.New("solo se permiten consultas SELECT o EXEC de SPs controlados")
)

// ValidateQuery enforces the read-only guardrail: only statements beginning
// with select or exec (case-insensitive) may reach the database.
func ValidateQuery(sql string) error {
	trimmed := strings.ToLower(strings.TrimSpace(sql))
	if strings.HasPrefix(trimmed, "select") || strings.HasPrefix(trimmed, "exec") {
		return nil
	}
	return ErrQueryNotAllowed
}

// Source is a lazily connected, process-wide cached connection pool. The
// first query dials the database; later queries reuse the pool.
type Source struct {
	cfg config.SQLConfig

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func NewSource(cfg config.SQLConfig) *Source {
	return &Source{cfg: cfg}
}

func (s *Source) acquire(ctx context.Context) (*pgxpool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		return s.pool, nil
	}

	if !s.cfg.Complete() {
		return nil, ErrMissingCredentials
	}

	poolCfg, err := pgxpool.ParseConfig(s.cfg.BuildDSN())
	if err != nil {
		return nil, fmt.Errorf("parse sql config: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to sql server: %w", err)
	}

	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping sql server: %w", err)
	}

	s.pool = pool
	return pool, nil
}

// RunQuery validates sql against the guardrail, then executes it with the
// given parameters and returns the rows as column-name keyed maps.
func (s *Source) RunQuery(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	if err := ValidateQuery(sql); err != nil {
		return nil, err
	}

	pool, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	var result []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		record := make(map[string]any, len(fields))
		for i, field := range fields {
			record[field.Name] = values[i]
		}
		result = append(result, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// Close releases the pool if a connection was ever established.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}
