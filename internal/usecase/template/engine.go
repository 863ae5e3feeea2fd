// Package template renders alert messages for delivery. Rendering is pure:
// given an event type, a context bag and a fixed clock the output is
// deterministic, so the same record can be rendered for the initial send and
// again for a resend.
package template

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"shopalert/internal/domain/entity"
)

// Marker prefixes every rendered message. Downstream publishers use it to
// recognize pre-rendered text and skip their own envelope.
const Marker = "\U0001F514" // 🔔

const timeLayout = "2006-01-02 15:04:05"

// Context carries the optional fields interpolated into a message body.
// Every field may be empty; absent fields are omitted from the output with
// no placeholder artifacts.
type Context struct {
	ShopName       string
	ProductTitle   string
	ProductURL     string
	OrderID        string
	CustomerName   string
	ErrorMessage   string
	AdditionalInfo map[string]string
}

// Engine renders alert messages. The zero value is not usable; construct one
// with NewEngine, or NewEngineWithClock in tests.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine using the system clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock creates an Engine with an injected clock.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Render produces the rich-text message for the event. It never fails:
// unknown event types fall back to a generic notification body.
//
// Layout: bolded title, body sentence, optional product link, optional
// additional-information block, trailing timestamp.
func (e *Engine) Render(eventType entity.EventType, ctx Context) string {
	title, body := content(eventType, ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n\n%s", Marker, title, body)

	if ctx.ProductURL != "" {
		fmt.Fprintf(&b, "\n\n<a href=\"%s\">View product</a>", ctx.ProductURL)
	}

	b.WriteString(formatAdditionalInfo(ctx.AdditionalInfo))

	fmt.Fprintf(&b, "\n\n<i>Time: %s</i>", e.now().Format(timeLayout))
	return b.String()
}

// content returns the title and body sentence for the event type.
func content(eventType entity.EventType, ctx Context) (string, string) {
	switch eventType {
	case entity.EventProductsCreate:
		return "New Product Created",
			fmt.Sprintf("A new product%s has been created%s.", boldQuoted(ctx.ProductTitle), inShop(ctx.ShopName))

	case entity.EventProductsUpdate:
		return "Product Updated",
			fmt.Sprintf("A product%s has been updated%s.", boldQuoted(ctx.ProductTitle), inShop(ctx.ShopName))

	case entity.EventProductsDelete:
		return "Product Deleted",
			fmt.Sprintf("A product has been deleted%s.", fromShop(ctx.ShopName))

	case entity.EventOrdersPaid:
		return "Order Paid",
			fmt.Sprintf("An order%s has been paid%s.", boldOrder(ctx.OrderID), atShop(ctx.ShopName))

	case entity.EventOrdersUpdated:
		return "Order Updated",
			fmt.Sprintf("An order%s has been updated%s.", boldOrder(ctx.OrderID), atShop(ctx.ShopName))

	case entity.EventOrdersCancelled:
		return "Order Cancelled",
			fmt.Sprintf("An order%s has been cancelled%s.", boldOrder(ctx.OrderID), atShop(ctx.ShopName))

	case entity.EventOrdersFulfilled:
		return "Order Fulfilled",
			fmt.Sprintf("An order%s has been fulfilled%s.", boldOrder(ctx.OrderID), atShop(ctx.ShopName))

	case entity.EventCustomersCreate:
		return "New Customer Registration",
			fmt.Sprintf("A new customer%s has registered%s.", boldName(ctx.CustomerName), atShop(ctx.ShopName))

	case entity.EventCustomersUpdate:
		return "Customer Updated",
			fmt.Sprintf("Customer%s details have been updated%s.", boldName(ctx.CustomerName), atShop(ctx.ShopName))

	case entity.EventCustomersDelete:
		return "Customer Deleted",
			fmt.Sprintf("A customer%s has been deleted%s.", boldName(ctx.CustomerName), fromShop(ctx.ShopName))

	case entity.EventCustomersRedact:
		return "Customer Data Redaction",
			fmt.Sprintf("A customer data redaction has been requested%s.", forShop(ctx.ShopName))

	case entity.EventCheckoutsCreate:
		return "New Order Placed",
			fmt.Sprintf("A new order has been placed%s.", atShop(ctx.ShopName))

	case entity.EventCheckoutsUpdate:
		return "Checkout Updated",
			fmt.Sprintf("A checkout has been updated%s.", atShop(ctx.ShopName))

	case entity.EventInventoryUpdate:
		return "Inventory Updated",
			fmt.Sprintf("Inventory levels have been updated%s%s.", forProduct(ctx.ProductTitle), inShop(ctx.ShopName))

	case entity.EventThemesCreate:
		return "Theme Created",
			fmt.Sprintf("A new theme has been created%s.", inShop(ctx.ShopName))

	case entity.EventThemesUpdate:
		return "Theme Updated",
			fmt.Sprintf("A theme has been updated%s.", inShop(ctx.ShopName))

	case entity.EventThemesDelete:
		return "Theme Deleted",
			fmt.Sprintf("A theme has been deleted%s.", fromShop(ctx.ShopName))

	case entity.EventThemesPublish:
		return "Theme Published",
			fmt.Sprintf("A theme has been published%s.", inShop(ctx.ShopName))

	case entity.EventShopUpdate:
		return "Shop Settings Updated",
			fmt.Sprintf("Shop settings have been updated%s.", forShop(ctx.ShopName))

	case entity.EventSystemIssue:
		body := fmt.Sprintf("A system issue has been detected%s.", forShop(ctx.ShopName))
		if ctx.ErrorMessage != "" {
			body += fmt.Sprintf("\n\n<b>Error details:</b>\n%s", ctx.ErrorMessage)
		}
		return "System Issue Detected", body

	default:
		return "Alert Notification",
			fmt.Sprintf("An alert has been triggered for your shop%s.", quoted(ctx.ShopName))
	}
}

// formatAdditionalInfo renders the free-form metadata block. Keys are sorted
// so output stays deterministic.
func formatAdditionalInfo(info map[string]string) string {
	if len(info) == 0 {
		return ""
	}

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("\n\n<b>Additional Information:</b>")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n<b>%s:</b> %s", k, info[k])
	}
	return b.String()
}

// Interpolation helpers. Each returns "" for empty input so missing context
// degrades to shorter prose.

func boldQuoted(title string) string {
	if title == "" {
		return ""
	}
	return fmt.Sprintf(" <b>\"%s\"</b>", title)
}

func boldName(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf(" <b>%s</b>", name)
}

func boldOrder(orderID string) string {
	if orderID == "" {
		return ""
	}
	return fmt.Sprintf(" <b>#%s</b>", orderID)
}

func forProduct(title string) string {
	if title == "" {
		return ""
	}
	return fmt.Sprintf(" for <b>\"%s\"</b>", title)
}

func quoted(shopName string) string {
	if shopName == "" {
		return ""
	}
	return fmt.Sprintf(" \"%s\"", shopName)
}

func inShop(shopName string) string {
	if shopName == "" {
		return ""
	}
	return fmt.Sprintf(" in shop \"%s\"", shopName)
}

func fromShop(shopName string) string {
	if shopName == "" {
		return ""
	}
	return fmt.Sprintf(" from shop \"%s\"", shopName)
}

func atShop(shopName string) string {
	if shopName == "" {
		return ""
	}
	return fmt.Sprintf(" at \"%s\"", shopName)
}

func forShop(shopName string) string {
	if shopName == "" {
		return ""
	}
	return fmt.Sprintf(" for \"%s\"", shopName)
}
