package router

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Chative-shop-assistant/server/internal/agent/cart"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

// rule is one entry of the precedence table. apply reports whether it matched;
// a rule that does not match must leave the turn untouched.
type rule struct {
	intent model.Intent
	apply  func(r *Router, t *turn) (model.Reply, bool)
}

// turn is the state of one utterance while it moves through the rules.
type turn struct {
	text    string // trimmed and lowercased
	session *model.Session
	dirty   bool
}

func phrases(ps ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		m[p] = struct{}{}
	}
	return m
}

var (
	greetingPhrases     = phrases("hi", "hello", "hey", "help")
	listProductPhrases  = phrases("products", "show products", "show product", "list products", "show all products", "all products", "catalog")
	listPricePhrases    = phrases("prices", "show prices", "price list", "list prices")
	viewCartPhrases     = phrases("cart", "view cart", "show cart", "my cart", "see cart")
	clearCartPhrases    = phrases("clear cart", "empty cart", "clear my cart", "empty my cart")
	checkoutPhrases     = phrases("checkout", "ceckout", "chekout", "check out", "place order")
	priceQueryTriggers  = []string{"price", "cost", "how much"}
	addTriggerPattern   = regexp.MustCompile(`\badd\s+to\s+(?:my\s+)?cart\b`)
	budgetPattern       = regexp.MustCompile(`\b(?:under|below)\s*(?:₹|rs\.?|inr|\$)?\s*(\d+(?:,\d{3})*)`)
	addNamedPattern     = regexp.MustCompile(`^add\s+(.+?)\s+to\s+(?:my\s+)?cart$`)
	priceFillerPattern  = regexp.MustCompile(`\b(?:what's|what|is|the|of|for|a|does|do|it|price|prices|cost|costs|how much)\b`)
	matchTrimCharacters = " .,!?;:'\""
)

// defaultRules is the authoritative precedence order: first match wins.
func defaultRules() []rule {
	return []rule{
		{model.IntentGreeting, (*Router).greeting},
		{model.IntentListProducts, (*Router).listProducts},
		{model.IntentListPrices, (*Router).listPrices},
		{model.IntentBudget, (*Router).budget},
		{model.IntentAddToCart, (*Router).addToCart},
		{model.IntentPendingProduct, (*Router).pendingProduct},
		{model.IntentViewCart, (*Router).viewCart},
		{model.IntentClearCart, (*Router).clearCart},
		{model.IntentCheckout, (*Router).checkout},
		{model.IntentPriceQuery, (*Router).priceQuery},
		{model.IntentProductLookup, (*Router).productLookup},
	}
}

func matchSubject(text string) string {
	return strings.Trim(text, matchTrimCharacters)
}

func (r *Router) greeting(t *turn) (model.Reply, bool) {
	if _, ok := greetingPhrases[t.text]; !ok {
		return model.Reply{}, false
	}
	return r.fmt.Greeting(), true
}

func (r *Router) listProducts(t *turn) (model.Reply, bool) {
	if _, ok := listProductPhrases[t.text]; !ok {
		return model.Reply{}, false
	}
	return r.fmt.Catalog(r.catalog.All()), true
}

func (r *Router) listPrices(t *turn) (model.Reply, bool) {
	if _, ok := listPricePhrases[t.text]; !ok {
		return model.Reply{}, false
	}
	return r.fmt.Prices(r.catalog.All()), true
}

// parseBudget extracts the inclusive upper bound; amounts that do not fit an
// int64 fail the rule.
func parseBudget(text string) (int64, bool) {
	m := budgetPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	bound, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return bound, true
}

func (r *Router) budget(t *turn) (model.Reply, bool) {
	bound, ok := parseBudget(t.text)
	if !ok {
		return model.Reply{}, false
	}
	return r.fmt.Budget(bound, r.catalog.UnderBudget(bound)), true
}

// addRequest reports whether text asks to add to the cart and returns any
// product text given alongside the request.
func addRequest(text string) (string, bool) {
	if loc := addTriggerPattern.FindStringIndex(text); loc != nil {
		rest := text[:loc[0]] + " " + text[loc[1]:]
		return matchSubject(strings.Join(strings.Fields(rest), " ")), true
	}
	if m := addNamedPattern.FindStringSubmatch(text); m != nil {
		return matchSubject(m[1]), true
	}
	return "", false
}

func (r *Router) addToCart(t *turn) (model.Reply, bool) {
	name, ok := addRequest(t.text)
	if !ok {
		return model.Reply{}, false
	}
	if name != "" {
		if p, found := r.catalog.Match(name); found {
			qty := cart.Add(&t.session.Cart, p)
			t.session.Dialog = model.DialogState{}
			t.dirty = true
			return r.fmt.Added(model.IntentAddToCart, p, qty), true
		}
	}
	// a repeated request restarts the single pending slot
	t.session.Dialog = model.DialogState{AwaitingProductForCart: true}
	t.dirty = true
	return r.fmt.AskProduct(), true
}

func (r *Router) pendingProduct(t *turn) (model.Reply, bool) {
	if !t.session.Dialog.AwaitingProductForCart {
		return model.Reply{}, false
	}
	t.dirty = true
	if p, found := r.catalog.Match(matchSubject(t.text)); found {
		qty := cart.Add(&t.session.Cart, p)
		t.session.Dialog = model.DialogState{}
		return r.fmt.Added(model.IntentPendingProduct, p, qty), true
	}

	t.session.Dialog.Misses++
	if r.maxMisses > 0 && t.session.Dialog.Misses >= r.maxMisses {
		t.session.Dialog = model.DialogState{}
		return r.fmt.PendingCancelled(), true
	}
	return r.fmt.ProductNotFound(), true
}

func (r *Router) viewCart(t *turn) (model.Reply, bool) {
	if _, ok := viewCartPhrases[t.text]; !ok {
		return model.Reply{}, false
	}
	s := cart.View(t.session.Cart, r.catalog)
	r.warnMissing(t.session.ID, s)
	return r.fmt.Cart(s), true
}

func (r *Router) clearCart(t *turn) (model.Reply, bool) {
	if _, ok := clearCartPhrases[t.text]; !ok {
		return model.Reply{}, false
	}
	removed := cart.Clear(&t.session.Cart)
	t.dirty = removed > 0
	return r.fmt.CartCleared(removed), true
}

func (r *Router) checkout(t *turn) (model.Reply, bool) {
	if _, ok := checkoutPhrases[t.text]; !ok {
		return model.Reply{}, false
	}
	if t.session.Cart.IsEmpty() {
		return r.fmt.CartEmpty(model.IntentCheckout), true
	}
	s := cart.Checkout(&t.session.Cart, r.catalog)
	t.dirty = true
	r.warnMissing(t.session.ID, s)
	if s.IsEmpty() {
		return r.fmt.CartEmpty(model.IntentCheckout), true
	}
	return r.fmt.Order(s, r.newOrderID()), true
}

func (r *Router) priceQuery(t *turn) (model.Reply, bool) {
	asked := false
	for _, trig := range priceQueryTriggers {
		if strings.Contains(t.text, trig) {
			asked = true
			break
		}
	}
	if !asked {
		return model.Reply{}, false
	}
	subject := matchSubject(strings.Join(strings.Fields(priceFillerPattern.ReplaceAllString(t.text, " ")), " "))
	if subject == "" {
		return model.Reply{}, false
	}
	p, found := r.catalog.Match(subject)
	if !found {
		return model.Reply{}, false
	}
	return r.fmt.Price(p), true
}

func (r *Router) productLookup(t *turn) (model.Reply, bool) {
	p, found := r.catalog.Match(matchSubject(t.text))
	if !found {
		return model.Reply{}, false
	}
	return r.fmt.Detail(p), true
}
