package fallback

import (
	"github.com/cloudwego/eino/schema"
)

const DefaultMaxToolCalls = 3

// graphState is the per-invocation local state of the fallback graph. It is
// only read or written inside Eino state handlers and compose.ProcessState,
// which serialize access.
type graphState struct {
	SessionID    string
	History      []*schema.Message
	ToolCalls    int
	LimitReached bool
	CallIDSeq    int
	TotalCostUSD float64
}

func normalizeMaxToolCalls(n int) int {
	if n <= 0 {
		return DefaultMaxToolCalls
	}
	return n
}

// checkAndMarkToolLimit marks the state once no further tool round is allowed.
// It reports true only on the call that sets the mark.
func checkAndMarkToolLimit(state *graphState, max int) bool {
	max = normalizeMaxToolCalls(max)
	if !state.LimitReached && state.ToolCalls >= max {
		state.LimitReached = true
		return true
	}
	return false
}

// incrementToolCallAndCheck counts one tool round and reports whether it went
// over the limit.
func incrementToolCallAndCheck(state *graphState, max int) bool {
	max = normalizeMaxToolCalls(max)
	state.ToolCalls++
	if state.ToolCalls > max {
		state.LimitReached = true
		return true
	}
	return false
}
