// Package router classifies shopper utterances and applies them to the
// session's cart and dialog state.
//
// Rules are evaluated in a fixed order and the first match wins; when nothing
// matches the utterance goes to the generative fallback. All session mutation
// happens under one lock, so concurrent requests never observe a half-applied
// add or checkout. The fallback call runs outside that lock because it never
// mutates session state.
package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/Chative-shop-assistant/server/internal/agent/cart"
	"github.com/Chative-shop-assistant/server/internal/agent/catalog"
	"github.com/Chative-shop-assistant/server/internal/agent/conversations"
	"github.com/Chative-shop-assistant/server/internal/agent/fallback"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
	"github.com/Chative-shop-assistant/server/internal/agent/reply"
	logx "github.com/Chative-shop-assistant/server/pkg/logger"
)

// Config holds everything the router needs. Messages and Fallback are optional.
type Config struct {
	Catalog          *catalog.Catalog
	Sessions         model.SessionRepository
	Messages         *conversations.MessagesManager
	Fallback         *fallback.Guard
	Formatter        *reply.Formatter
	MaxPendingMisses int
	NewOrderID       func() string
}

type Router struct {
	mu sync.Mutex

	catalog    *catalog.Catalog
	sessions   model.SessionRepository
	messages   *conversations.MessagesManager
	fallback   *fallback.Guard
	fmt        *reply.Formatter
	maxMisses  int
	newOrderID func() string
	rules      []rule
}

func New(cfg Config) (*Router, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session repository is nil")
	}
	if cfg.Formatter == nil {
		return nil, fmt.Errorf("reply formatter is nil")
	}
	newOrderID := cfg.NewOrderID
	if newOrderID == nil {
		newOrderID = func() string { return "" }
	}
	return &Router{
		catalog:    cfg.Catalog,
		sessions:   cfg.Sessions,
		messages:   cfg.Messages,
		fallback:   cfg.Fallback,
		fmt:        cfg.Formatter,
		maxMisses:  cfg.MaxPendingMisses,
		newOrderID: newOrderID,
		rules:      defaultRules(),
	}, nil
}

// Intents lists the rule intents in evaluation order.
func (r *Router) Intents() []model.Intent {
	out := make([]model.Intent, 0, len(r.rules)+1)
	for _, rl := range r.rules {
		out = append(out, rl.intent)
	}
	return append(out, model.IntentFallback)
}

// Handle processes one utterance. It never fails: every problem becomes a reply.
func (r *Router) Handle(ctx context.Context, sessionID, message string) model.Reply {
	text := model.Normalize(message)
	if text == "" {
		return r.fmt.NoMessage()
	}
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}

	res, matched := r.route(ctx, sessionID, text)
	if !matched {
		res = r.delegate(ctx, sessionID, message)
	}
	r.record(ctx, sessionID, message, res)

	logx.Debug().Str("session_id", sessionID).Str("intent", res.Intent.String()).Msg("utterance routed")
	return res
}

// route runs the rule table against a copy of the session and persists the
// copy only when a rule changed it.
func (r *Router) route(ctx context.Context, sessionID, text string) (res model.Reply, matched bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			logx.Error().Str("session_id", sessionID).Interface("panic", p).Msg("router panic recovered")
			res, matched = r.fmt.SystemError(), true
		}
	}()

	stored, err := r.sessions.Load(ctx, sessionID)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to load session")
		return r.fmt.SystemError(), true
	}

	t := &turn{text: text, session: stored.Clone()}
	for _, rl := range r.rules {
		out, ok := rl.apply(r, t)
		if !ok {
			continue
		}
		if t.dirty {
			if err := r.sessions.Save(ctx, t.session); err != nil {
				logx.Error().Err(err).Str("session_id", sessionID).Str("intent", rl.intent.String()).Msg("failed to save session")
				return r.fmt.SystemError(), true
			}
		}
		return out, true
	}
	return model.Reply{}, false
}

// delegate sends the raw message to the fallback generator.
func (r *Router) delegate(ctx context.Context, sessionID, message string) model.Reply {
	text, err := r.fallback.Reply(ctx, sessionID, message)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("fallback degraded to apology")
		return r.fmt.Apology()
	}
	return r.fmt.Fallback(text)
}

func (r *Router) record(ctx context.Context, sessionID, message string, res model.Reply) {
	if r.messages == nil || res.Intent == model.IntentError {
		return
	}
	if err := r.messages.RecordTurn(ctx, sessionID, message, res.Text); err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to record conversation turn")
	}
}

func (r *Router) warnMissing(sessionID string, s cart.Summary) {
	if len(s.Missing) == 0 {
		return
	}
	ids := make([]string, 0, len(s.Missing))
	for _, id := range s.Missing {
		ids = append(ids, string(id))
	}
	logx.Warn().Str("session_id", sessionID).Strs("product_ids", ids).Msg("cart references products missing from catalog")
}

// Cart returns the priced cart of a session without touching it.
func (r *Router) Cart(ctx context.Context, sessionID string) (cart.Summary, error) {
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.sessions.Load(ctx, sessionID)
	if err != nil {
		return cart.Summary{}, err
	}
	sum := cart.View(s.Cart, r.catalog)
	r.warnMissing(sessionID, sum)
	return sum, nil
}

// ClearCart empties a session's cart outside of a chat turn.
func (r *Router) ClearCart(ctx context.Context, sessionID string) (model.Reply, error) {
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.sessions.Load(ctx, sessionID)
	if err != nil {
		return model.Reply{}, err
	}
	removed := cart.Clear(&s.Cart)
	if removed > 0 {
		if err := r.sessions.Save(ctx, s); err != nil {
			return model.Reply{}, err
		}
	}
	return r.fmt.CartCleared(removed), nil
}

// Reset forgets the session's cart, pending dialog and transcript.
func (r *Router) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if r.messages != nil {
		if err := r.messages.Clear(ctx, sessionID); err != nil {
			return err
		}
	}
	return nil
}
