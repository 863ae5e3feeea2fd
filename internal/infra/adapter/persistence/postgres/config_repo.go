package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"shopalert/internal/domain/entity"
	"shopalert/internal/repository"
)

type ConfigRepo struct{ db *sql.DB }

func NewConfigRepo(db *sql.DB) repository.ConfigRepository {
	return &ConfigRepo{db: db}
}

func (repo *ConfigRepo) GetAlertConfig(ctx context.Context, shopID string) (*entity.ShopAlertConfig, error) {
	const query = `
SELECT shop_id, flags
FROM shop_alert_configs
WHERE shop_id = $1
LIMIT 1`
	var config entity.ShopAlertConfig
	var flagsJSON []byte
	err := repo.db.QueryRowContext(ctx, query, shopID).Scan(&config.ShopID, &flagsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetAlertConfig: %w", err)
	}

	config.Flags = map[string]bool{}
	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &config.Flags); err != nil {
			return nil, fmt.Errorf("GetAlertConfig: unmarshal flags: %w", err)
		}
	}
	return &config, nil
}

// GetReceiverConfig loads the channel record and normalizes it into the
// canonical shape: the legacy receiver_platform boolean (old schema, implied
// "telegram") only applies when the channel column is empty, and the
// comma-separated chat id column is split here, not at call sites.
func (repo *ConfigRepo) GetReceiverConfig(ctx context.Context, shopID string) (*entity.ReceiverChannelConfig, error) {
	const query = `
SELECT shop_id, channel, receiver_platform, telegram_bot_token, telegram_chat_ids
FROM receiver_channel_configs
WHERE shop_id = $1
LIMIT 1`
	var config entity.ReceiverChannelConfig
	var channel, botToken, chatIDs sql.NullString
	var legacyPlatform sql.NullBool
	err := repo.db.QueryRowContext(ctx, query, shopID).Scan(
		&config.ShopID, &channel, &legacyPlatform, &botToken, &chatIDs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetReceiverConfig: %w", err)
	}

	config.Channel = channel.String
	if config.Channel == "" && legacyPlatform.Valid && legacyPlatform.Bool {
		config.Channel = entity.ChannelTelegram
	}
	config.TelegramBotToken = botToken.String
	config.TelegramChatIDs = entity.SplitChatIDs(chatIDs.String)
	return &config, nil
}

func (repo *ConfigRepo) UpsertAlertConfig(ctx context.Context, config *entity.ShopAlertConfig) error {
	flagsJSON, err := json.Marshal(config.Flags)
	if err != nil {
		return fmt.Errorf("UpsertAlertConfig: marshal flags: %w", err)
	}

	const query = `
INSERT INTO shop_alert_configs (shop_id, flags, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (shop_id) DO UPDATE SET
       flags      = EXCLUDED.flags,
       updated_at = now()`
	if _, err := repo.db.ExecContext(ctx, query, config.ShopID, flagsJSON); err != nil {
		return fmt.Errorf("UpsertAlertConfig: %w", err)
	}
	return nil
}

func (repo *ConfigRepo) UpsertReceiverConfig(ctx context.Context, config *entity.ReceiverChannelConfig) error {
	const query = `
INSERT INTO receiver_channel_configs (shop_id, channel, telegram_bot_token, telegram_chat_ids, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (shop_id) DO UPDATE SET
       channel            = EXCLUDED.channel,
       telegram_bot_token = EXCLUDED.telegram_bot_token,
       telegram_chat_ids  = EXCLUDED.telegram_chat_ids,
       updated_at         = now()`
	_, err := repo.db.ExecContext(ctx, query,
		config.ShopID, config.Channel,
		config.TelegramBotToken, entity.JoinChatIDs(config.TelegramChatIDs),
	)
	if err != nil {
		return fmt.Errorf("UpsertReceiverConfig: %w", err)
	}
	return nil
}
