package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    month                INTEGER PRIMARY KEY,
    id                   TEXT NOT NULL UNIQUE,
    marketing_budget     TEXT NOT NULL,
    cash_balance         TEXT NOT NULL,
    subscription_price   TEXT NOT NULL,
    current_customers    INTEGER NOT NULL,
    current_mrr          TEXT NOT NULL,
    target_cac           TEXT NOT NULL,
    team_size            INTEGER NOT NULL,
    expected_churn_rate  REAL NOT NULL,
    recorded_at          TEXT NOT NULL
);
`

const snapshotColumns = `month, id, marketing_budget, cash_balance, subscription_price,
	current_customers, current_mrr, target_cac, team_size, expected_churn_rate, recorded_at`
