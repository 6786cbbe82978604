package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/health-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS accounts (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	arr               REAL NOT NULL DEFAULT 0,
	segment           TEXT NOT NULL DEFAULT '',
	industry          TEXT NOT NULL DEFAULT '',
	region            TEXT NOT NULL DEFAULT '',
	csm               TEXT NOT NULL DEFAULT '',
	executive_contact TEXT NOT NULL DEFAULT '',
	renewal_date      DATETIME NOT NULL,
	nps               REAL NOT NULL DEFAULT 0,
	usage_percent     REAL NOT NULL DEFAULT 0,
	open_tickets      INTEGER NOT NULL DEFAULT 0,
	billing_health    REAL NOT NULL DEFAULT 0,
	health_score      REAL NOT NULL DEFAULT 0,
	risk_tier         TEXT NOT NULL DEFAULT '',
	usage_series      TEXT,
	action_items      TEXT,
	recent_tickets    TEXT,
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS kpi_snapshots (
	id       TEXT PRIMARY KEY,
	taken_at DATETIME NOT NULL,
	summary  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_segment ON accounts(segment);
CREATE INDEX IF NOT EXISTS idx_accounts_health_score ON accounts(health_score);
CREATE INDEX IF NOT EXISTS idx_accounts_renewal_date ON accounts(renewal_date);
CREATE INDEX IF NOT EXISTS idx_kpi_snapshots_taken_at ON kpi_snapshots(taken_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteUpsertAccount = `
INSERT INTO accounts (
	id, name, arr, segment, industry, region, csm, executive_contact,
	renewal_date, nps, usage_percent, open_tickets, billing_health,
	health_score, risk_tier, usage_series, action_items, recent_tickets, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	arr = excluded.arr,
	segment = excluded.segment,
	industry = excluded.industry,
	region = excluded.region,
	csm = excluded.csm,
	executive_contact = excluded.executive_contact,
	renewal_date = excluded.renewal_date,
	nps = excluded.nps,
	usage_percent = excluded.usage_percent,
	open_tickets = excluded.open_tickets,
	billing_health = excluded.billing_health,
	usage_series = excluded.usage_series,
	action_items = excluded.action_items,
	recent_tickets = excluded.recent_tickets,
	updated_at = excluded.updated_at`

func (s *SQLiteStore) UpsertAccounts(ctx context.Context, accounts []model.Account) error {
	if err := model.ValidateAll(accounts); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, a := range accounts {
		series, items, tickets, err := marshalCollections(a)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, sqliteUpsertAccount,
			a.ID, a.Name, a.ARR, a.Segment, a.Industry, a.Region, a.CSM, a.ExecutiveContact,
			a.RenewalDate.UTC(), a.NPS, a.UsagePercent, a.OpenTickets, a.BillingHealth,
			a.HealthScore, string(a.RiskTier), series, items, tickets, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert account %s", a.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit upsert")
}

func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: account %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get account %s", id)
	}
	return a, nil
}

func (s *SQLiteStore) ListAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	var args []any
	if filter.Segment != "" {
		query += ` AND segment = ?`
		args = append(args, filter.Segment)
	}
	if filter.RiskTier != "" {
		query += ` AND risk_tier = ?`
		args = append(args, string(filter.RiskTier))
	}
	if filter.MaxHealth > 0 {
		query += ` AND health_score < ?`
		args = append(args, filter.MaxHealth)
	}
	query += ` ORDER BY arr DESC, name ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan account")
		}
		accounts = append(accounts, *a)
	}
	return accounts, eris.Wrap(rows.Err(), "sqlite: iterate accounts")
}

func (s *SQLiteStore) SaveDerived(ctx context.Context, accounts []model.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save derived")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, a := range accounts {
		series, err := marshalSeries(a)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE accounts SET health_score = ?, risk_tier = ?, usage_series = ?, updated_at = ? WHERE id = ?`,
			a.HealthScore, string(a.RiskTier), series, now, a.ID,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: save derived %s", a.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save derived")
}

func (s *SQLiteStore) ReplaceActionItems(ctx context.Context, accountID string, items []model.PlaybookItem) error {
	data, err := marshalItems(accountID, items)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET action_items = ?, updated_at = ? WHERE id = ?`,
		data, time.Now().UTC(), accountID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: replace action items %s", accountID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: account %s not found", accountID)
	}
	return nil
}

func (s *SQLiteStore) SaveKPISnapshot(ctx context.Context, summary model.KPISummary) (string, error) {
	id := uuid.New().String()
	data, err := marshalSummary(summary)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kpi_snapshots (id, taken_at, summary) VALUES (?, ?, ?)`,
		id, summary.ComputedAt.UTC(), data,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert kpi snapshot")
	}
	return id, nil
}

func (s *SQLiteStore) ListKPISnapshots(ctx context.Context, limit int) ([]model.KPISummary, error) {
	query := `SELECT summary FROM kpi_snapshots ORDER BY taken_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list kpi snapshots")
	}
	defer rows.Close()

	var snapshots []model.KPISummary
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan kpi snapshot")
		}
		s, err := unmarshalSummary(raw)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, eris.Wrap(rows.Err(), "sqlite: iterate kpi snapshots")
}
