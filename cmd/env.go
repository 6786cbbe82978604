package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/health-cli/internal/playbook"
	"github.com/sells-group/health-cli/internal/portfolio"
	"github.com/sells-group/health-cli/internal/source"
	"github.com/sells-group/health-cli/internal/store"
	"github.com/sells-group/health-cli/pkg/notion"
	sfpkg "github.com/sells-group/health-cli/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "health.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns, cfg.Store.MinConns)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEngine builds the portfolio engine from config. A rules file, when
// configured or passed via flag, replaces the built-in playbook rules.
func initEngine(rulesFile string) (*portfolio.Engine, error) {
	if rulesFile == "" {
		rulesFile = cfg.Playbook.RulesFile
	}

	var opts []portfolio.Option
	if rulesFile != "" {
		rules, err := playbook.LoadRulesFromFile(rulesFile)
		if err != nil {
			return nil, err
		}
		rec, err := playbook.NewRecommenderWithRules(rules)
		if err != nil {
			return nil, err
		}
		opts = append(opts, portfolio.WithRecommender(rec))
	}

	return portfolio.NewEngine(cfg.Scoring, cfg.Anomaly, opts...)
}

// initSource picks an account source. "fixture" generates deterministic
// demo accounts, "store" reads previously seeded/synced accounts, "crm"
// pulls live from Salesforce.
func initSource(ctx context.Context, name, segment string) (source.Source, func(), error) {
	switch name {
	case "fixture":
		return source.NewFixture(cfg.Fixture), func() {}, nil
	case "store":
		st, err := initStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, nil, eris.Wrap(err, "migrate store")
		}
		return source.NewStoreSource(st, store.AccountFilter{Segment: segment}), func() { _ = st.Close() }, nil
	case "crm":
		sfClient, err := initSalesforce()
		if err != nil {
			return nil, nil, err
		}
		return source.NewCRMSource(sfClient, segment), func() {}, nil
	default:
		return nil, nil, eris.Errorf("unknown source %q (want fixture, store, or crm)", name)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (HEALTH_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RPS)), nil
}

func initNotion() (notion.Client, error) {
	if cfg.Notion.Token == "" || cfg.Notion.PlaybookDB == "" {
		return nil, eris.New("notion token and playbook database ID are required (HEALTH_NOTION_TOKEN, HEALTH_NOTION_PLAYBOOK_DB)")
	}
	return notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RPS)), nil
}
