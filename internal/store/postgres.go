package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/health-cli/internal/model"
)

// Querier is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool    Querier
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, maxConns, minConns int32) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	if minConns <= 0 {
		minConns = 2
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithQuerier wraps an existing querier; tests use this with
// pgxmock.
func NewPostgresWithQuerier(q Querier) *PostgresStore {
	return &PostgresStore{pool: q}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS accounts (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	arr               DOUBLE PRECISION NOT NULL DEFAULT 0,
	segment           TEXT NOT NULL DEFAULT '',
	industry          TEXT NOT NULL DEFAULT '',
	region            TEXT NOT NULL DEFAULT '',
	csm               TEXT NOT NULL DEFAULT '',
	executive_contact TEXT NOT NULL DEFAULT '',
	renewal_date      TIMESTAMPTZ NOT NULL,
	nps               DOUBLE PRECISION NOT NULL DEFAULT 0,
	usage_percent     DOUBLE PRECISION NOT NULL DEFAULT 0,
	open_tickets      INTEGER NOT NULL DEFAULT 0,
	billing_health    DOUBLE PRECISION NOT NULL DEFAULT 0,
	health_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
	risk_tier         TEXT NOT NULL DEFAULT '',
	usage_series      TEXT,
	action_items      TEXT,
	recent_tickets    TEXT,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS kpi_snapshots (
	id       TEXT PRIMARY KEY,
	taken_at TIMESTAMPTZ NOT NULL,
	summary  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_segment ON accounts(segment);
CREATE INDEX IF NOT EXISTS idx_accounts_health_score ON accounts(health_score);
CREATE INDEX IF NOT EXISTS idx_accounts_renewal_date ON accounts(renewal_date);
CREATE INDEX IF NOT EXISTS idx_kpi_snapshots_taken_at ON kpi_snapshots(taken_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const postgresUpsertAccount = `
INSERT INTO accounts (
	id, name, arr, segment, industry, region, csm, executive_contact,
	renewal_date, nps, usage_percent, open_tickets, billing_health,
	health_score, risk_tier, usage_series, action_items, recent_tickets, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	arr = EXCLUDED.arr,
	segment = EXCLUDED.segment,
	industry = EXCLUDED.industry,
	region = EXCLUDED.region,
	csm = EXCLUDED.csm,
	executive_contact = EXCLUDED.executive_contact,
	renewal_date = EXCLUDED.renewal_date,
	nps = EXCLUDED.nps,
	usage_percent = EXCLUDED.usage_percent,
	open_tickets = EXCLUDED.open_tickets,
	billing_health = EXCLUDED.billing_health,
	usage_series = EXCLUDED.usage_series,
	action_items = EXCLUDED.action_items,
	recent_tickets = EXCLUDED.recent_tickets,
	updated_at = EXCLUDED.updated_at`

func (s *PostgresStore) UpsertAccounts(ctx context.Context, accounts []model.Account) error {
	if err := model.ValidateAll(accounts); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, a := range accounts {
		series, items, tickets, err := marshalCollections(a)
		if err != nil {
			return err
		}
		_, err = s.pool.Exec(ctx, postgresUpsertAccount,
			a.ID, a.Name, a.ARR, a.Segment, a.Industry, a.Region, a.CSM, a.ExecutiveContact,
			a.RenewalDate.UTC(), a.NPS, a.UsagePercent, a.OpenTickets, a.BillingHealth,
			a.HealthScore, string(a.RiskTier), series, items, tickets, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert account %s", a.ID)
		}
	}
	return nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: account %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get account %s", id)
	}
	return a, nil
}

func (s *PostgresStore) ListAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE TRUE`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}
	if filter.Segment != "" {
		query += ` AND segment = ` + arg(filter.Segment)
	}
	if filter.RiskTier != "" {
		query += ` AND risk_tier = ` + arg(string(filter.RiskTier))
	}
	if filter.MaxHealth > 0 {
		query += ` AND health_score < ` + arg(filter.MaxHealth)
	}
	query += ` ORDER BY arr DESC, name ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan account")
		}
		accounts = append(accounts, *a)
	}
	return accounts, eris.Wrap(rows.Err(), "postgres: iterate accounts")
}

func (s *PostgresStore) SaveDerived(ctx context.Context, accounts []model.Account) error {
	now := time.Now().UTC()
	for _, a := range accounts {
		series, err := marshalSeries(a)
		if err != nil {
			return err
		}
		_, err = s.pool.Exec(ctx,
			`UPDATE accounts SET health_score = $1, risk_tier = $2, usage_series = $3, updated_at = $4 WHERE id = $5`,
			a.HealthScore, string(a.RiskTier), series, now, a.ID,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: save derived %s", a.ID)
		}
	}
	return nil
}

func (s *PostgresStore) ReplaceActionItems(ctx context.Context, accountID string, items []model.PlaybookItem) error {
	data, err := marshalItems(accountID, items)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET action_items = $1, updated_at = $2 WHERE id = $3`,
		data, time.Now().UTC(), accountID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: replace action items %s", accountID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: account %s not found", accountID)
	}
	return nil
}

func (s *PostgresStore) SaveKPISnapshot(ctx context.Context, summary model.KPISummary) (string, error) {
	id := uuid.New().String()
	data, err := marshalSummary(summary)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO kpi_snapshots (id, taken_at, summary) VALUES ($1, $2, $3)`,
		id, summary.ComputedAt.UTC(), data,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert kpi snapshot")
	}
	return id, nil
}

func (s *PostgresStore) ListKPISnapshots(ctx context.Context, limit int) ([]model.KPISummary, error) {
	query := `SELECT summary FROM kpi_snapshots ORDER BY taken_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list kpi snapshots")
	}
	defer rows.Close()

	var snapshots []model.KPISummary
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "postgres: scan kpi snapshot")
		}
		s, err := unmarshalSummary(raw)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, eris.Wrap(rows.Err(), "postgres: iterate kpi snapshots")
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
