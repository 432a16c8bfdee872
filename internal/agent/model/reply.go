package model

// Intent is the classified purpose of an utterance.
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentListProducts   Intent = "list_products"
	IntentListPrices     Intent = "list_prices"
	IntentBudget         Intent = "budget_filter"
	IntentAddToCart      Intent = "add_to_cart"
	IntentPendingProduct Intent = "pending_product"
	IntentViewCart       Intent = "view_cart"
	IntentClearCart      Intent = "clear_cart"
	IntentCheckout       Intent = "checkout"
	IntentPriceQuery     Intent = "price_query"
	IntentProductLookup  Intent = "product_lookup"
	IntentFallback       Intent = "fallback"
	IntentNoMessage      Intent = "no_message"
	IntentError          Intent = "error"
)

func (i Intent) String() string {
	return string(i)
}

// Attachment ties an image to the product line it belongs to.
type Attachment struct {
	ProductID ProductID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
}

// Reply is what the router hands to the presentation layer.
type Reply struct {
	Intent      Intent       `json:"intent"`
	Text        string       `json:"reply"`
	Attachments []Attachment `json:"attachments,omitempty"`
	OrderID     string       `json:"order_id,omitempty"`
	OrderTotal  int64        `json:"order_total,omitempty"`
	// Degraded is set when the fallback failed and a fixed apology was returned.
	Degraded bool `json:"-"`
}
