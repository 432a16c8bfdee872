// Package reply renders router outcomes into text plus structured attachments.
//
// Product-bearing text keeps one "Image: <path>" line per product, after the
// name, price, description and stock lines, so renderers that split on the
// marker keep working. New renderers should read Reply.Attachments instead.
package reply

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/Chative-shop-assistant/server/internal/agent/cart"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

const (
	ImageMarker = "Image: "

	NoMessageText     = "Please type a message."
	ApologyText       = "Sorry, I couldn't understand that."
	SystemErrorText   = "Internal server error. Please try again."
	AskProductText    = "❓ Which product do you want to add? Type the product name."
	NotFoundText      = "❌ Product not found. Try again."
	PendingCancelText = "❌ Product not found. Add to cart cancelled, type 'products' to see what we have."
	CartEmptyText     = "🛒 Your cart is empty."
)

const greetingText = `Hello 👋
I can help you shop 😊

Try typing:
• products
• prices
• products under 3000
• add to cart
• cart
• checkout`

type Formatter struct {
	currency string
	imageDir string
	imageExt string
}

func NewFormatter(cfg model.CatalogConfig) *Formatter {
	ext := cfg.ImageExt
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Formatter{
		currency: cfg.Currency,
		imageDir: cfg.ImageDir,
		imageExt: ext,
	}
}

// Image returns the image reference derived from the product name.
func (f *Formatter) Image(p model.Product) string {
	return path.Join(f.imageDir, p.ImageSlug()+f.imageExt)
}

func (f *Formatter) money(v int64) string {
	return f.currency + strconv.FormatInt(v, 10)
}

func (f *Formatter) attachment(p model.Product) model.Attachment {
	return model.Attachment{ProductID: p.ID, Name: p.Name, Image: f.Image(p)}
}

func (f *Formatter) Greeting() model.Reply {
	return model.Reply{Intent: model.IntentGreeting, Text: greetingText}
}

func (f *Formatter) writeCards(b *strings.Builder, products []model.Product) []model.Attachment {
	atts := make([]model.Attachment, 0, len(products))
	for _, p := range products {
		fmt.Fprintf(b, "Name: %s\nPrice: %s\n%s%s\n---\n", p.Name, f.money(p.Price), ImageMarker, f.Image(p))
		atts = append(atts, f.attachment(p))
	}
	return atts
}

func (f *Formatter) Catalog(products []model.Product) model.Reply {
	var b strings.Builder
	b.WriteString("🛍️ Available Products:\n\n")
	atts := f.writeCards(&b, products)
	b.WriteString("👉 To know more about a product, type the product name")
	return model.Reply{Intent: model.IntentListProducts, Text: b.String(), Attachments: atts}
}

func (f *Formatter) Prices(products []model.Product) model.Reply {
	var b strings.Builder
	b.WriteString("💰 Product Prices:\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "%s – %s\n", p.Name, f.money(p.Price))
	}
	return model.Reply{Intent: model.IntentListPrices, Text: strings.TrimSpace(b.String())}
}

func (f *Formatter) Budget(bound int64, products []model.Product) model.Reply {
	if len(products) == 0 {
		return model.Reply{Intent: model.IntentBudget, Text: fmt.Sprintf("No products under %s.", f.money(bound))}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🛍️ Products under %s:\n\n", f.money(bound))
	atts := f.writeCards(&b, products)
	b.WriteString("👉 Type product name to see full details")
	return model.Reply{Intent: model.IntentBudget, Text: b.String(), Attachments: atts}
}

func (f *Formatter) AskProduct() model.Reply {
	return model.Reply{Intent: model.IntentAddToCart, Text: AskProductText}
}

// Added confirms a cart add; intent tells whether it came from the trigger
// itself or from a pending clarification.
func (f *Formatter) Added(intent model.Intent, p model.Product, quantity int) model.Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s added to cart.", p.Name)
	if quantity > 1 {
		fmt.Fprintf(&b, " You now have %d.", quantity)
	}
	b.WriteString("\n\nType 'cart' to view cart or 'checkout' to order.")
	return model.Reply{Intent: intent, Text: b.String()}
}

func (f *Formatter) ProductNotFound() model.Reply {
	return model.Reply{Intent: model.IntentPendingProduct, Text: NotFoundText}
}

func (f *Formatter) PendingCancelled() model.Reply {
	return model.Reply{Intent: model.IntentPendingProduct, Text: PendingCancelText}
}

func (f *Formatter) CartEmpty(intent model.Intent) model.Reply {
	return model.Reply{Intent: intent, Text: CartEmptyText}
}

func (f *Formatter) Cart(s cart.Summary) model.Reply {
	if s.IsEmpty() {
		return f.CartEmpty(model.IntentViewCart)
	}
	var b strings.Builder
	b.WriteString("🛒 Your Cart:\n\n")
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "%s x%d – %s each = %s\n", l.Product.Name, l.Quantity, f.money(l.Product.Price), f.money(l.LineTotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\n👉 Type 'checkout' to place order", f.money(s.Total))
	return model.Reply{Intent: model.IntentViewCart, Text: b.String()}
}

func (f *Formatter) CartCleared(removed int) model.Reply {
	if removed == 0 {
		return f.CartEmpty(model.IntentClearCart)
	}
	return model.Reply{Intent: model.IntentClearCart, Text: "🗑️ Your cart has been cleared."}
}

func (f *Formatter) Order(s cart.Summary, orderID string) model.Reply {
	if s.IsEmpty() {
		return f.CartEmpty(model.IntentCheckout)
	}
	var b strings.Builder
	b.WriteString("✅ Order Summary:\n\n")
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "%s x%d - %s\n", l.Product.Name, l.Quantity, f.money(l.LineTotal))
	}
	fmt.Fprintf(&b, "\nTotal Price: %s\n", f.money(s.Total))
	if orderID != "" {
		fmt.Fprintf(&b, "Order ID: %s\n", orderID)
	}
	b.WriteString("Order confirmed ✅\n\n🎉 Thank you for shopping!")
	return model.Reply{Intent: model.IntentCheckout, Text: b.String(), OrderID: orderID, OrderTotal: s.Total}
}

func (f *Formatter) Price(p model.Product) model.Reply {
	return model.Reply{
		Intent: model.IntentPriceQuery,
		Text:   fmt.Sprintf("The price of %s is %s.", p.Name, f.money(p.Price)),
	}
}

func (f *Formatter) Detail(p model.Product) model.Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s\nName: %s\nPrice: %s\nDescription: %s\n", p.ID, p.Name, f.money(p.Price), p.Description)
	if p.Stock != nil {
		fmt.Fprintf(&b, "Stock: %d\n", *p.Stock)
	}
	// image stays last: legacy renderers take everything after the marker as the path
	fmt.Fprintf(&b, "%s%s", ImageMarker, f.Image(p))
	return model.Reply{
		Intent:      model.IntentProductLookup,
		Text:        b.String(),
		Attachments: []model.Attachment{f.attachment(p)},
	}
}

func (f *Formatter) NoMessage() model.Reply {
	return model.Reply{Intent: model.IntentNoMessage, Text: NoMessageText}
}

func (f *Formatter) Fallback(text string) model.Reply {
	return model.Reply{Intent: model.IntentFallback, Text: text}
}

func (f *Formatter) Apology() model.Reply {
	return model.Reply{Intent: model.IntentFallback, Text: ApologyText, Degraded: true}
}

func (f *Formatter) SystemError() model.Reply {
	return model.Reply{Intent: model.IntentError, Text: SystemErrorText}
}
