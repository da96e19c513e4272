package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"currency-tracker/internal/domain/model"
	"currency-tracker/pkg/logger"
)

const schema = `CREATE TABLE IF NOT EXISTS currencies (
	position      BIGSERIAL PRIMARY KEY,
	generation_id UUID NOT NULL,
	code          TEXT NOT NULL,
	name          TEXT NOT NULL,
	rate          DOUBLE PRECISION NOT NULL
);`

// PostgresRepository persists the cached rate snapshot. Rows carry the uuid
// of the fetch generation they belong to; CleanUp rotates the generation so
// the table only ever holds rows from a single fetch.
type PostgresRepository struct {
	insertStmt  *sql.Stmt
	readAllStmt *sql.Stmt
	cleanUpStmt *sql.Stmt

	mu         sync.Mutex
	generation uuid.UUID

	log *logger.Logger
}

// OpenDatabase connects to Postgres, waiting for it to become reachable, and
// applies the schema.
func OpenDatabase(dsn string, retries int, delay time.Duration, log *logger.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < retries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				break
			}
		}
		log.Info("Waiting for database", "attempt", i+1, "retries", retries)
		time.Sleep(delay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

func NewPostgresRepository(db *sql.DB, log *logger.Logger) (*PostgresRepository, error) {
	insertStmt, err := db.Prepare(`INSERT INTO currencies (generation_id, code, name, rate) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	readAllStmt, err := db.Prepare(`SELECT code, name, rate FROM currencies ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare read statement: %w", err)
	}
	cleanUpStmt, err := db.Prepare(`DELETE FROM currencies`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare clean-up statement: %w", err)
	}

	return &PostgresRepository{
		insertStmt:  insertStmt,
		readAllStmt: readAllStmt,
		cleanUpStmt: cleanUpStmt,
		generation:  uuid.New(),
		log:         log,
	}, nil
}

func (r *PostgresRepository) ReadCurrencyData(ctx context.Context) ([]model.Currency, error) {
	rows, err := r.readAllStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read currency data: %w", err)
	}
	defer rows.Close()

	var currencies []model.Currency
	for rows.Next() {
		var c model.Currency
		if err := rows.Scan(&c.Code, &c.Name, &c.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan currency row: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currency rows: %w", err)
	}

	return currencies, nil
}

func (r *PostgresRepository) InsertCurrencyData(ctx context.Context, currency model.Currency) error {
	r.mu.Lock()
	generation := r.generation
	r.mu.Unlock()

	if _, err := r.insertStmt.ExecContext(ctx, generation.String(), currency.Code, currency.Name, currency.Rate); err != nil {
		return fmt.Errorf("failed to insert currency %s: %w", currency.Code, err)
	}
	return nil
}

func (r *PostgresRepository) CleanUp(ctx context.Context) error {
	if _, err := r.cleanUpStmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clean up currency data: %w", err)
	}

	next := uuid.New()
	r.mu.Lock()
	r.generation = next
	r.mu.Unlock()

	r.log.Debug("Currency cache cleared", "next_generation", next.String())
	return nil
}
