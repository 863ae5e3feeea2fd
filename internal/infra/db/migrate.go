package db

import "database/sql"

// MigrateUp creates the three persistence tables: per-shop alert flags,
// per-shop receiver channel credentials, and the alert message log.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS shop_alert_configs (
    shop_id    TEXT PRIMARY KEY,
    flags      JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// receiver_platform は旧スキーマのカラム（boolean で telegram 有効を示す）。
	// 読み出し時に channel カラムへ正規化する。
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS receiver_channel_configs (
    shop_id            TEXT PRIMARY KEY,
    channel            VARCHAR(30),
    receiver_platform  BOOLEAN,
    telegram_bot_token TEXT,
    telegram_chat_ids  TEXT,
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS alert_messages (
    id           TEXT PRIMARY KEY,
    shop_id      TEXT NOT NULL,
    event_type   VARCHAR(50) NOT NULL,
    message      TEXT NOT NULL DEFAULT '',
    status       VARCHAR(10) NOT NULL,
    error_detail TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// ショップ別履歴の新しい順ページング用
		`CREATE INDEX IF NOT EXISTS idx_alert_messages_shop_created ON alert_messages(shop_id, created_at DESC)`,
		// PENDING 掃き出しワーカー用
		`CREATE INDEX IF NOT EXISTS idx_alert_messages_status ON alert_messages(status) WHERE status = 'PENDING'`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// ステータス値の制約(既に存在する場合はエラーを無視)
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_alert_status'
    ) THEN
        ALTER TABLE alert_messages ADD CONSTRAINT chk_alert_status
        CHECK (status IN ('PENDING', 'SUCCESS', 'ERROR'));
    END IF;
END $$;
`)

	return nil
}
