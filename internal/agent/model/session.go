package model

import "time"

// DefaultSessionID is used when the caller does not identify a session.
const DefaultSessionID = "default"

// CartLine holds one product and its quantity. A cart never has two lines
// for the same product.
type CartLine struct {
	ProductID ProductID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart keeps lines in insertion order.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// DialogState is the single pending clarification slot.
type DialogState struct {
	AwaitingProductForCart bool `json:"awaiting_product_for_cart"`
	// Misses counts failed resolutions since the wait started.
	Misses int `json:"misses"`
}

// Session is the mutable state owned by the router for one conversation.
type Session struct {
	ID        string      `json:"id"`
	Cart      Cart        `json:"cart"`
	Dialog    DialogState `json:"dialog"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id}
}

// Clone returns a deep copy so a failed request never leaks partial mutations.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Cart = s.Cart.Clone()
	return &c
}
