// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as AlertRecord, EventType, and the
// per-shop configuration records, along with their validation rules and domain errors.
package entity

// EventType is the canonical tag for a business event that can trigger an alert.
// Known values map 1:1 onto Shopify webhook topics (underscored form). Unknown
// topics are preserved as raw tags: they render with the generic template and
// are never enabled by configuration (no flag key).
type EventType string

const (
	EventProductsCreate  EventType = "PRODUCTS_CREATE"
	EventProductsUpdate  EventType = "PRODUCTS_UPDATE"
	EventProductsDelete  EventType = "PRODUCTS_DELETE"
	EventOrdersPaid      EventType = "ORDERS_PAID"
	EventOrdersUpdated   EventType = "ORDERS_UPDATED"
	EventOrdersCancelled EventType = "ORDERS_CANCELLED"
	EventOrdersFulfilled EventType = "ORDERS_FULFILLED"
	EventCustomersCreate EventType = "CUSTOMERS_CREATE"
	EventCustomersUpdate EventType = "CUSTOMERS_UPDATE"
	EventCustomersDelete EventType = "CUSTOMERS_DELETE"
	EventCustomersRedact EventType = "CUSTOMERS_REDACT"
	EventCheckoutsCreate EventType = "CHECKOUTS_CREATE"
	EventCheckoutsUpdate EventType = "CHECKOUTS_UPDATE"
	EventInventoryUpdate EventType = "INVENTORY_LEVELS_UPDATE"
	EventThemesCreate    EventType = "THEMES_CREATE"
	EventThemesUpdate    EventType = "THEMES_UPDATE"
	EventThemesDelete    EventType = "THEMES_DELETE"
	EventThemesPublish   EventType = "THEMES_PUBLISH"
	EventShopUpdate      EventType = "SHOP_UPDATE"
	EventSystemIssue     EventType = "SYSTEM_ISSUE"
)

// eventFlagKeys is the versioned mapping from event types to the boolean flag
// stored in ShopAlertConfig. It is the single source of truth for gating:
// an event type absent from this table can never be enabled.
var eventFlagKeys = map[EventType]string{
	EventProductsCreate:  "product_create",
	EventProductsUpdate:  "product_update",
	EventProductsDelete:  "product_delete",
	EventOrdersPaid:      "orders_paid",
	EventOrdersUpdated:   "orders_updated",
	EventOrdersCancelled: "orders_cancelled",
	EventOrdersFulfilled: "orders_fulfilled",
	EventCustomersCreate: "customers_create",
	EventCustomersUpdate: "customers_update",
	EventCustomersDelete: "customers_delete",
	EventCustomersRedact: "customers_redact",
	EventCheckoutsCreate: "checkouts_create",
	EventCheckoutsUpdate: "checkouts_update",
	EventInventoryUpdate: "inventory_update",
	EventThemesCreate:    "themes_create",
	EventThemesUpdate:    "themes_update",
	EventThemesDelete:    "themes_delete",
	EventThemesPublish:   "themes_publish",
	EventShopUpdate:      "shop_update",
	EventSystemIssue:     "system_issue",
}

// FlagKey returns the configuration flag key for the event type.
// The second return value is false for event types outside the known set,
// which callers must treat as "never enabled" (fail-closed).
func (e EventType) FlagKey() (string, bool) {
	key, ok := eventFlagKeys[e]
	return key, ok
}

// Known reports whether the event type belongs to the canonical set.
func (e EventType) Known() bool {
	_, ok := eventFlagKeys[e]
	return ok
}

// String implements fmt.Stringer.
func (e EventType) String() string { return string(e) }

// EventTypeFromTopic maps an inbound webhook topic to an EventType.
// Topics arrive either in Shopify's underscored form ("PRODUCTS_CREATE")
// or the slashed form ("products/create"); both normalize to the same tag.
func EventTypeFromTopic(topic string) EventType {
	normalized := make([]byte, 0, len(topic))
	for i := 0; i < len(topic); i++ {
		c := topic[i]
		switch {
		case c >= 'a' && c <= 'z':
			normalized = append(normalized, c-'a'+'A')
		case c == '/':
			normalized = append(normalized, '_')
		default:
			normalized = append(normalized, c)
		}
	}
	return EventType(normalized)
}

// KnownEventTypes returns the canonical event type set in stable order.
func KnownEventTypes() []EventType {
	return []EventType{
		EventProductsCreate, EventProductsUpdate, EventProductsDelete,
		EventOrdersPaid, EventOrdersUpdated, EventOrdersCancelled, EventOrdersFulfilled,
		EventCustomersCreate, EventCustomersUpdate, EventCustomersDelete, EventCustomersRedact,
		EventCheckoutsCreate, EventCheckoutsUpdate,
		EventInventoryUpdate,
		EventThemesCreate, EventThemesUpdate, EventThemesDelete, EventThemesPublish,
		EventShopUpdate, EventSystemIssue,
	}
}
