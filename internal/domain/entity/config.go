package entity

import "strings"

// ChannelTelegram is the only receiver channel the current deployment supports.
// The config record stores a channel name so new channels can be added without
// a schema change; unrecognized names resolve to "unsupported" at the gate.
const ChannelTelegram = "telegram"

// ShopAlertConfig holds the per-shop enabled flags, keyed by the flag keys
// from the EventType mapping table. Exactly one record per shop; absence of a
// record means every event type is disabled.
type ShopAlertConfig struct {
	ShopID string
	Flags  map[string]bool
}

// IsEnabled reports whether the given event type is enabled for this shop.
// Fail-closed: unknown event types and missing flags both return false.
func (c *ShopAlertConfig) IsEnabled(eventType EventType) bool {
	if c == nil {
		return false
	}
	key, ok := eventType.FlagKey()
	if !ok {
		return false
	}
	return c.Flags[key]
}

// ReceiverChannelConfig holds the per-shop delivery channel selection and its
// credentials. Channel-specific fields are only meaningful when Channel names
// that channel.
type ReceiverChannelConfig struct {
	ShopID           string
	Channel          string
	TelegramBotToken string
	TelegramChatIDs  []string
}

// TelegramCredentials is the validated credential bundle handed to the
// Telegram publisher.
type TelegramCredentials struct {
	BotToken string
	ChatIDs  []string
}

// Validate checks that all required credential fields are present.
func (c *TelegramCredentials) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return &ValidationError{Field: "bot_token", Message: "bot token is required"}
	}
	if len(c.ChatIDs) == 0 {
		return &ValidationError{Field: "chat_ids", Message: "at least one chat id is required"}
	}
	for _, id := range c.ChatIDs {
		if strings.TrimSpace(id) == "" {
			return &ValidationError{Field: "chat_ids", Message: "chat ids must be non-empty"}
		}
	}
	return nil
}

// TelegramCredentials extracts the credential bundle from the config record.
// Returns nil when Telegram is not the selected channel or any required field
// is missing; callers treat nil as "not configured" (fail-closed).
func (r *ReceiverChannelConfig) TelegramCredentials() *TelegramCredentials {
	if r == nil || r.Channel != ChannelTelegram {
		return nil
	}
	creds := &TelegramCredentials{
		BotToken: r.TelegramBotToken,
		ChatIDs:  r.TelegramChatIDs,
	}
	if err := creds.Validate(); err != nil {
		return nil
	}
	return creds
}

// SplitChatIDs normalizes a comma-separated chat id list into a slice,
// trimming whitespace and dropping empty segments. The persistence layer
// stores chat ids as a single text column, matching the original schema.
func SplitChatIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// JoinChatIDs is the inverse of SplitChatIDs for writes.
func JoinChatIDs(ids []string) string {
	return strings.Join(ids, ",")
}
