package dispatch

import (
	"fmt"
	"strings"

	"shopalert/internal/domain/entity"
	"shopalert/internal/usecase/template"
)

// extractContext pulls template fields out of a raw webhook payload.
// Payload shapes follow the Shopify webhook bodies per topic; malformed or
// missing fields degrade to absent context fields, never to a dispatch
// failure.
func extractContext(eventType entity.EventType, shopID string, payload map[string]any) template.Context {
	ctx := template.Context{
		ShopName: shopID,
	}
	if name := stringField(payload, "shop_name", "shop_domain"); name != "" {
		ctx.ShopName = name
	}
	if payload == nil {
		return ctx
	}

	switch eventType {
	case entity.EventProductsCreate, entity.EventProductsUpdate, entity.EventProductsDelete:
		ctx.ProductTitle = stringField(payload, "title")
		ctx.ProductURL = stringField(payload, "url", "online_store_preview_url")

	case entity.EventInventoryUpdate:
		ctx.ProductTitle = stringField(payload, "title", "sku")

	case entity.EventOrdersPaid, entity.EventOrdersUpdated,
		entity.EventOrdersCancelled, entity.EventOrdersFulfilled,
		entity.EventCheckoutsCreate, entity.EventCheckoutsUpdate:
		// "name" carries the display number ("#1001"); the leading hash is
		// re-added by the template.
		ctx.OrderID = strings.TrimPrefix(stringField(payload, "name", "order_number", "id"), "#")
		if customer, ok := payload["customer"].(map[string]any); ok {
			ctx.CustomerName = personName(customer)
		}

	case entity.EventCustomersCreate, entity.EventCustomersUpdate,
		entity.EventCustomersDelete, entity.EventCustomersRedact:
		ctx.CustomerName = personName(payload)

	case entity.EventSystemIssue:
		ctx.ErrorMessage = stringField(payload, "error", "message")
	}

	return ctx
}

// personName joins first/last name fields, falling back to email.
func personName(fields map[string]any) string {
	first := stringField(fields, "first_name")
	last := stringField(fields, "last_name")
	name := strings.TrimSpace(first + " " + last)
	if name != "" {
		return name
	}
	return stringField(fields, "email")
}

// stringField returns the first present key rendered as a string. JSON
// numbers (float64 after unmarshal) format without a decimal point when
// integral, so numeric ids keep their familiar shape.
func stringField(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := payload[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%v", v)
		case int:
			return fmt.Sprintf("%d", v)
		case int64:
			return fmt.Sprintf("%d", v)
		}
	}
	return ""
}
