package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"shopalert/internal/domain/entity"
	"shopalert/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── 1. GetAlertConfig ──────────────────────────────── */

func TestConfigRepo_GetAlertConfig(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM shop_alert_configs`).
		WithArgs("acme.myshopify.com").
		WillReturnRows(sqlmock.NewRows([]string{"shop_id", "flags"}).
			AddRow("acme.myshopify.com", []byte(`{"product_create":true,"orders_paid":false}`)))

	repo := postgres.NewConfigRepo(db)
	got, err := repo.GetAlertConfig(context.Background(), "acme.myshopify.com")
	if err != nil {
		t.Fatalf("GetAlertConfig err=%v", err)
	}

	want := &entity.ShopAlertConfig{
		ShopID: "acme.myshopify.com",
		Flags:  map[string]bool{"product_create": true, "orders_paid": false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigRepo_GetAlertConfig_missing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM shop_alert_configs`).
		WithArgs("ghost.myshopify.com").
		WillReturnRows(sqlmock.NewRows([]string{"shop_id", "flags"}))

	repo := postgres.NewConfigRepo(db)
	got, err := repo.GetAlertConfig(context.Background(), "ghost.myshopify.com")
	if err != nil {
		t.Fatalf("GetAlertConfig err=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil for shop without config, got %+v", got)
	}
}

/* ──────────────────────────────── 2. GetReceiverConfig ──────────────────────────────── */

func receiverRow(channel any, platform any, token, chatIDs string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"shop_id", "channel", "receiver_platform", "telegram_bot_token", "telegram_chat_ids",
	}).AddRow("acme.myshopify.com", channel, platform, token, chatIDs)
}

func TestConfigRepo_GetReceiverConfig(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM receiver_channel_configs`).
		WithArgs("acme.myshopify.com").
		WillReturnRows(receiverRow("telegram", nil, "123:abc", "111, 222"))

	repo := postgres.NewConfigRepo(db)
	got, err := repo.GetReceiverConfig(context.Background(), "acme.myshopify.com")
	if err != nil {
		t.Fatalf("GetReceiverConfig err=%v", err)
	}

	want := &entity.ReceiverChannelConfig{
		ShopID:           "acme.myshopify.com",
		Channel:          entity.ChannelTelegram,
		TelegramBotToken: "123:abc",
		TelegramChatIDs:  []string{"111", "222"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// 旧スキーマ行: channel カラムが NULL で receiver_platform=true の場合は
// telegram に正規化される。
func TestConfigRepo_GetReceiverConfig_legacyPlatformColumn(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM receiver_channel_configs`).
		WithArgs("acme.myshopify.com").
		WillReturnRows(receiverRow(nil, true, "123:abc", "111"))

	repo := postgres.NewConfigRepo(db)
	got, err := repo.GetReceiverConfig(context.Background(), "acme.myshopify.com")
	if err != nil {
		t.Fatalf("GetReceiverConfig err=%v", err)
	}
	if got.Channel != entity.ChannelTelegram {
		t.Fatalf("legacy platform flag not normalized, channel=%q", got.Channel)
	}
}

func TestConfigRepo_GetReceiverConfig_legacyPlatformFalse(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM receiver_channel_configs`).
		WithArgs("acme.myshopify.com").
		WillReturnRows(receiverRow(nil, false, "123:abc", "111"))

	repo := postgres.NewConfigRepo(db)
	got, err := repo.GetReceiverConfig(context.Background(), "acme.myshopify.com")
	if err != nil {
		t.Fatalf("GetReceiverConfig err=%v", err)
	}
	if got.Channel != "" {
		t.Fatalf("disabled legacy platform must stay unselected, channel=%q", got.Channel)
	}
}

/* ──────────────────────────────── 3. Upserts ──────────────────────────────── */

func TestConfigRepo_UpsertAlertConfig(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO shop_alert_configs`)).
		WithArgs("acme.myshopify.com", []byte(`{"product_create":true}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewConfigRepo(db)
	err := repo.UpsertAlertConfig(context.Background(), &entity.ShopAlertConfig{
		ShopID: "acme.myshopify.com",
		Flags:  map[string]bool{"product_create": true},
	})
	if err != nil {
		t.Fatalf("UpsertAlertConfig err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestConfigRepo_UpsertReceiverConfig(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO receiver_channel_configs`)).
		WithArgs("acme.myshopify.com", "telegram", "123:abc", "111,222").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewConfigRepo(db)
	err := repo.UpsertReceiverConfig(context.Background(), &entity.ReceiverChannelConfig{
		ShopID:           "acme.myshopify.com",
		Channel:          entity.ChannelTelegram,
		TelegramBotToken: "123:abc",
		TelegramChatIDs:  []string{"111", "222"},
	})
	if err != nil {
		t.Fatalf("UpsertReceiverConfig err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
