package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"shopalert/internal/domain/entity"
	"shopalert/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── ヘルパ ──────────────────────────────── */

func alertRow(rec *entity.AlertRecord) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "shop_id", "event_type", "message",
		"status", "error_detail", "created_at",
	}).AddRow(
		rec.ID, rec.ShopID, string(rec.EventType), rec.Message,
		string(rec.Status), rec.ErrorDetail, rec.CreatedAt,
	)
}

func sampleAlert(status entity.AlertStatus) *entity.AlertRecord {
	return &entity.AlertRecord{
		ID:        "a1b2c3",
		ShopID:    "acme.myshopify.com",
		EventType: entity.EventProductsCreate,
		Message:   "🔔 <b>New Product Created</b>",
		Status:    status,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

/* ──────────────────────────────── 1. Create ──────────────────────────────── */

func TestAlertRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	rec := sampleAlert(entity.AlertStatusPending)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO alert_messages`)).
		WithArgs(rec.ID, rec.ShopID, "PRODUCTS_CREATE", rec.Message, "PENDING", "", rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewAlertRepo(db)
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAlertRepo_Create_invalidRecord(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := postgres.NewAlertRepo(db)
	err := repo.Create(context.Background(), &entity.AlertRecord{Status: entity.AlertStatusPending})
	if err == nil {
		t.Fatal("want validation error for blank shop id, got nil")
	}
}

/* ──────────────────────────────── 2. UpdateStatus ──────────────────────────────── */

func TestAlertRepo_UpdateStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE alert_messages SET`)).
		WithArgs("SUCCESS", "", "a1b2c3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewAlertRepo(db)
	if err := repo.UpdateStatus(context.Background(), "a1b2c3", entity.AlertStatusSuccess, ""); err != nil {
		t.Fatalf("UpdateStatus err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAlertRepo_UpdateStatus_notFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE alert_messages SET`)).
		WithArgs("ERROR", "boom", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewAlertRepo(db)
	err := repo.UpdateStatus(context.Background(), "missing", entity.AlertStatusError, "boom")
	if err == nil {
		t.Fatal("want not-found error, got nil")
	}
}

// ERROR を重ねて書いても行は1行のまま終端状態が保たれる
func TestAlertRepo_UpdateStatus_repeatedErrorIsIdempotent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE alert_messages SET`)).
		WithArgs("ERROR", "telegram down", "a1b2c3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE alert_messages SET`)).
		WithArgs("ERROR", "telegram down", "a1b2c3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewAlertRepo(db)
	for i := 0; i < 2; i++ {
		if err := repo.UpdateStatus(context.Background(), "a1b2c3", entity.AlertStatusError, "telegram down"); err != nil {
			t.Fatalf("UpdateStatus call %d err=%v", i+1, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. MarkInterrupted ──────────────────────────────── */

func TestAlertRepo_MarkInterrupted(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE alert_messages SET`)).
		WithArgs("dispatch interrupted", "a1b2c3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewAlertRepo(db)
	marked, err := repo.MarkInterrupted(context.Background(), "a1b2c3", "dispatch interrupted")
	if err != nil {
		t.Fatalf("MarkInterrupted err=%v", err)
	}
	if !marked {
		t.Fatal("want marked=true for a PENDING record")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// スキャン後に確定したレコードは status ガードで0行更新となり、上書きされない
func TestAlertRepo_MarkInterrupted_alreadyFinalized(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE alert_messages SET`)).
		WithArgs("dispatch interrupted", "a1b2c3").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewAlertRepo(db)
	marked, err := repo.MarkInterrupted(context.Background(), "a1b2c3", "dispatch interrupted")
	if err != nil {
		t.Fatalf("MarkInterrupted err=%v", err)
	}
	if marked {
		t.Fatal("want marked=false when the record is no longer PENDING")
	}
}

/* ──────────────────────────────── 4. Get ──────────────────────────────── */

func TestAlertRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleAlert(entity.AlertStatusError)
	want.ErrorDetail = "telegram API server error"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs("a1b2c3").
		WillReturnRows(alertRow(want))

	repo := postgres.NewAlertRepo(db)
	got, err := repo.Get(context.Background(), "a1b2c3")
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAlertRepo_Get_missing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "shop_id", "event_type", "message", "status", "error_detail", "created_at",
		}))

	repo := postgres.NewAlertRepo(db)
	got, err := repo.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil for missing record, got %+v", got)
	}
}

/* ──────────────────────────────── 5. ListByShop / CountByShop ──────────────────────────────── */

func TestAlertRepo_ListByShop(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	rec := sampleAlert(entity.AlertStatusSuccess)
	mock.ExpectQuery(`FROM alert_messages`).
		WithArgs("acme.myshopify.com", 20, 0).
		WillReturnRows(alertRow(rec))

	repo := postgres.NewAlertRepo(db)
	got, err := repo.ListByShop(context.Background(), "acme.myshopify.com", 0, 20)
	if err != nil {
		t.Fatalf("ListByShop err=%v", err)
	}
	if len(got) != 1 || got[0].ID != rec.ID {
		t.Fatalf("want 1 record with id %s, got %+v", rec.ID, got)
	}
}

func TestAlertRepo_CountByShop(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs("acme.myshopify.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	repo := postgres.NewAlertRepo(db)
	total, err := repo.CountByShop(context.Background(), "acme.myshopify.com")
	if err != nil {
		t.Fatalf("CountByShop err=%v", err)
	}
	if total != 42 {
		t.Fatalf("want total=42, got %d", total)
	}
}

/* ──────────────────────────────── 6. ListStuckPending ──────────────────────────────── */

func TestAlertRepo_ListStuckPending(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	cutoff := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	rec := sampleAlert(entity.AlertStatusPending)

	mock.ExpectQuery(`WHERE status = 'PENDING'`).
		WithArgs(cutoff, 100).
		WillReturnRows(alertRow(rec))

	repo := postgres.NewAlertRepo(db)
	got, err := repo.ListStuckPending(context.Background(), cutoff, 100)
	if err != nil {
		t.Fatalf("ListStuckPending err=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 stuck record, got %d", len(got))
	}
}
