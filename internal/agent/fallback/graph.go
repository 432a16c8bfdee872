package fallback

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-shop-assistant/server/internal/agent/conversations"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
	"github.com/Chative-shop-assistant/server/internal/agent/observers"
	"github.com/Chative-shop-assistant/server/internal/agent/prompts"
	"github.com/Chative-shop-assistant/server/internal/agent/tools"
	logx "github.com/Chative-shop-assistant/server/pkg/logger"
)

const (
	NodeContextAssembler = "FallbackContextAssembler"
	NodeFallbackModel    = "FallbackChatModel"
	NodeToolExecutor     = "FallbackToolExecutor"
)

// GraphConfig wires the prompt, transcript and catalog tools into the fallback graph.
type GraphConfig struct {
	ModelName    string
	Prompt       model.AssistantPromptConfig
	Currency     string
	Products     []model.Product
	Messages     *conversations.MessagesManager
	Tools        []tool.BaseTool
	MaxToolCalls int
}

type graphInput struct {
	SessionID string
	Query     string
}

// GraphGenerator answers unmatched utterances with the chat model, letting it
// call catalog tools a bounded number of times.
type GraphGenerator struct {
	runnable  compose.Runnable[graphInput, *schema.Message]
	modelName string
}

// graphBuilder handles the construction of the fallback graph
type graphBuilder struct {
	config    GraphConfig
	chatModel einomodel.BaseChatModel
	graph     *compose.Graph[graphInput, *schema.Message]
}

func NewGraphGenerator(ctx context.Context, chatModel einomodel.BaseChatModel, cfg GraphConfig) (*GraphGenerator, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	if cfg.Messages == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}

	b := &graphBuilder{
		config:    cfg,
		chatModel: chatModel,
		graph: compose.NewGraph[graphInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *graphState {
				return &graphState{}
			}),
		),
	}

	if len(cfg.Tools) > 0 {
		if err := b.setupTools(ctx); err != nil {
			return nil, err
		}
	}
	b.addNodes()
	if err := b.addEdges(); err != nil {
		return nil, err
	}

	runnable, err := b.compile(ctx)
	if err != nil {
		return nil, err
	}
	return &GraphGenerator{runnable: runnable, modelName: cfg.ModelName}, nil
}

// bindTools returns a chat model that advertises the given tools.
func bindTools(cm einomodel.BaseChatModel, infos []*schema.ToolInfo) (einomodel.BaseChatModel, error) {
	switch m := cm.(type) {
	case einomodel.ToolCallingChatModel:
		bound, err := m.WithTools(infos)
		if err != nil {
			return nil, err
		}
		return bound, nil
	case einomodel.ChatModel:
		if err := m.BindTools(infos); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("chat model does not support tool calling")
	}
}

func (b *graphBuilder) setupTools(ctx context.Context) error {
	infos, err := tools.ToolInfos(ctx, b.config.Tools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	b.chatModel, err = bindTools(b.chatModel, infos)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to fallback model")
		return fmt.Errorf("failed to bind tools: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               b.config.Tools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: tools.SanitizeArguments,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	return b.graph.AddToolsNode(NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(toolExecutorPreHandler(b.config.MaxToolCalls)),
	)
}

func (b *graphBuilder) addNodes() {
	_ = b.graph.AddLambdaNode(NodeContextAssembler,
		compose.InvokableLambda(b.assembleContext),
		compose.WithStatePreHandler(func(ctx context.Context, in graphInput, s *graphState) (graphInput, error) {
			*s = graphState{SessionID: in.SessionID}
			return in, nil
		}),
	)

	_ = b.graph.AddChatModelNode(NodeFallbackModel, b.chatModel,
		compose.WithStatePreHandler(chatModelPreHandler(b.config.MaxToolCalls)),
		compose.WithStatePostHandler(chatModelPostHandler(b.config.ModelName)),
	)
}

func (b *graphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, NodeContextAssembler},
		{NodeContextAssembler, NodeFallbackModel},
	}
	if len(b.config.Tools) == 0 {
		edges = append(edges, [2]string{NodeFallbackModel, compose.END})
	} else {
		edges = append(edges, [2]string{NodeToolExecutor, NodeFallbackModel})
	}
	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}

	if len(b.config.Tools) == 0 {
		return nil
	}
	decisionBranch := compose.NewGraphBranch(
		toolExecutorCondition,
		map[string]bool{
			NodeToolExecutor: true,
			compose.END:      true,
		},
	)
	if err := b.graph.AddBranch(NodeFallbackModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}
	return nil
}

func (b *graphBuilder) compile(ctx context.Context) (compose.Runnable[graphInput, *schema.Message], error) {
	// bound the model/tool loop even if the branch misbehaves
	maxSteps := 10 + normalizeMaxToolCalls(b.config.MaxToolCalls)*2
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling fallback graph")
		return nil, fmt.Errorf("error compiling fallback graph: %w", err)
	}
	return runnable, nil
}

// assembleContext renders the system prompt and joins it with the transcript.
func (b *graphBuilder) assembleContext(ctx context.Context, in graphInput) ([]*schema.Message, error) {
	system, err := prompts.RenderAssistantSystem(ctx, b.config.Prompt, b.config.Currency, b.config.Products)
	if err != nil {
		return nil, err
	}
	msgs, err := b.config.Messages.BuildFallbackContext(ctx, in.SessionID, system, in.Query)
	if err != nil {
		// answer without history rather than not at all
		logx.Warn().Err(err).Str("session_id", in.SessionID).Msg("fallback history unavailable")
		return []*schema.Message{schema.SystemMessage(system), schema.UserMessage(in.Query)}, nil
	}
	return msgs, nil
}

func chatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *graphState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *graphState) ([]*schema.Message, error) {
		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			state.History = append(state.History, schema.SystemMessage(fmt.Sprintf(
				"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
					"Answer now using only the product information already gathered.",
				normalizeMaxToolCalls(maxToolCalls),
			)))
		}
		return state.History, nil
	}
}

func chatModelPostHandler(modelName string) func(context.Context, *schema.Message, *graphState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *graphState) (*schema.Message, error) {
		if out == nil {
			return out, nil
		}
		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			u := model.ComputeUsage(modelName, out.ResponseMeta.Usage)
			state.TotalCostUSD += u.TotalCostUSD
			logx.Debug().
				Str("session_id", state.SessionID).
				Str("node", NodeFallbackModel).
				Str("model", u.Model).
				Int("prompt_tokens", u.PromptTokens).
				Int("completion_tokens", u.CompletionTokens).
				Float64("total_cost_usd", u.TotalCostUSD).
				Float64("running_cost_usd", state.TotalCostUSD).
				Msg("LLM usage")
		}

		// some providers omit tool call ids; the tools node needs them to pair results
		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				state.CallIDSeq++
				out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.CallIDSeq)
			}
		}

		state.History = append(state.History, out)
		return out, nil
	}
}

func toolExecutorCondition(ctx context.Context, out *schema.Message) (string, error) {
	var limitReached bool
	_ = compose.ProcessState(ctx, func(_ context.Context, state *graphState) error {
		limitReached = state.LimitReached
		return nil
	})

	if limitReached || out == nil || len(out.ToolCalls) == 0 {
		return compose.END, nil
	}
	logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Routing to tool executor")
	return NodeToolExecutor, nil
}

func toolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *graphState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *graphState) (*schema.Message, error) {
		if incrementToolCallAndCheck(state, maxToolCalls) {
			logx.Warn().
				Int("tool_call_count", state.ToolCalls).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Str("session_id", state.SessionID).
				Msg("Tool call limit exceeded")
		}
		return in, nil
	}
}

func (g *GraphGenerator) Generate(ctx context.Context, sessionID, text string) (string, error) {
	out, err := g.runnable.Invoke(ctx, graphInput{SessionID: sessionID, Query: text},
		compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}

var _ Generator = (*GraphGenerator)(nil)
