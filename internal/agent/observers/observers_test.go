package observers

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestLastUserContent(t *testing.T) {
	msgs := []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage(" first "),
		nil,
		schema.AssistantMessage("reply", nil),
		schema.UserMessage(" second "),
		schema.AssistantMessage("another", nil),
	}
	assert.Equal(t, "second", lastUserContent(msgs))
	assert.Empty(t, lastUserContent([]*schema.Message{schema.SystemMessage("only")}))
}

func TestHandlersBuild(t *testing.T) {
	assert.NotNil(t, NewAllCallbacks())
	assert.NotNil(t, NewPromptCallbacks())
	assert.NotNil(t, NewToolCallbacks())
}
