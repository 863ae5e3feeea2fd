package template

import (
	"strings"
	"testing"
	"time"

	"shopalert/internal/domain/entity"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
}

func TestEngine_Render_ProductCreate(t *testing.T) {
	engine := NewEngineWithClock(fixedClock())

	got := engine.Render(entity.EventProductsCreate, Context{
		ShopName:     "acme-store",
		ProductTitle: "Widget",
	})

	want := "\U0001F514 <b>New Product Created</b>\n\n" +
		"A new product <b>\"Widget\"</b> has been created in shop \"acme-store\".\n\n" +
		"<i>Time: 2026-03-14 09:30:00</i>"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestEngine_Render_EmptyContextNeverErrors(t *testing.T) {
	// 空コンテキストでもプレースホルダの残骸を出さない
	engine := NewEngineWithClock(fixedClock())

	for _, eventType := range entity.KnownEventTypes() {
		t.Run(string(eventType), func(t *testing.T) {
			got := engine.Render(eventType, Context{})

			if !strings.HasPrefix(got, Marker+" <b>") {
				t.Errorf("expected marker prefix, got %q", got)
			}
			if !strings.Contains(got, "<i>Time: 2026-03-14 09:30:00</i>") {
				t.Errorf("expected timestamp line, got %q", got)
			}
			for _, artifact := range []string{`""`, "<b></b>", "  ", " .", "#</b>"} {
				if strings.Contains(got, artifact) {
					t.Errorf("found placeholder artifact %q in %q", artifact, got)
				}
			}
		})
	}
}

func TestEngine_Render_UnknownEventTypeFallsBack(t *testing.T) {
	engine := NewEngineWithClock(fixedClock())

	got := engine.Render(entity.EventType("CARTS_CREATE"), Context{ShopName: "acme-store"})

	if !strings.Contains(got, "<b>Alert Notification</b>") {
		t.Errorf("expected generic title, got %q", got)
	}
	if !strings.Contains(got, `An alert has been triggered for your shop "acme-store".`) {
		t.Errorf("expected generic body, got %q", got)
	}
}

func TestEngine_Render_SystemIssueErrorDetails(t *testing.T) {
	engine := NewEngineWithClock(fixedClock())

	t.Run("with error message", func(t *testing.T) {
		got := engine.Render(entity.EventSystemIssue, Context{
			ShopName:     "acme-store",
			ErrorMessage: "webhook queue overflow",
		})

		if !strings.Contains(got, "<b>Error details:</b>\nwebhook queue overflow") {
			t.Errorf("expected error details block, got %q", got)
		}
	})

	t.Run("without error message", func(t *testing.T) {
		got := engine.Render(entity.EventSystemIssue, Context{ShopName: "acme-store"})

		if strings.Contains(got, "Error details") {
			t.Errorf("expected no error details block, got %q", got)
		}
	})
}

func TestEngine_Render_ProductLink(t *testing.T) {
	engine := NewEngineWithClock(fixedClock())

	got := engine.Render(entity.EventProductsUpdate, Context{
		ProductTitle: "Widget",
		ProductURL:   "https://acme-store.myshopify.com/products/widget",
	})

	if !strings.Contains(got, `<a href="https://acme-store.myshopify.com/products/widget">View product</a>`) {
		t.Errorf("expected product link line, got %q", got)
	}
}

func TestEngine_Render_AdditionalInfoSorted(t *testing.T) {
	engine := NewEngineWithClock(fixedClock())

	got := engine.Render(entity.EventOrdersPaid, Context{
		OrderID: "1042",
		AdditionalInfo: map[string]string{
			"total":    "99.00 USD",
			"currency": "USD",
		},
	})

	block := "<b>Additional Information:</b>\n<b>currency:</b> USD\n<b>total:</b> 99.00 USD"
	if !strings.Contains(got, block) {
		t.Errorf("expected sorted additional info block, got %q", got)
	}
	if !strings.Contains(got, "An order <b>#1042</b> has been paid.") {
		t.Errorf("expected order body, got %q", got)
	}
}

func TestEngine_Render_DeterministicWithFixedClock(t *testing.T) {
	engine := NewEngineWithClock(fixedClock())

	ctx := Context{ShopName: "acme-store", ProductTitle: "Widget"}
	first := engine.Render(entity.EventProductsCreate, ctx)
	second := engine.Render(entity.EventProductsCreate, ctx)

	if first != second {
		t.Errorf("expected identical output, got\n%s\nand\n%s", first, second)
	}
}
