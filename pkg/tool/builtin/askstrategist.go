package builtin

import (
	"context"

	"github.com/dynamaic/assistant-core/pkg/wire"
)

const askStrategistDescription = "You should ask the strategist for a new plan if something isn't where the strategist thought it would be, " +
	"an unexpected outcome occurs, or something that might change the plan."

var askStrategistSchema = wire.Schema{
	Properties: map[string]wire.Property{
		"message": {
			Type: "string",
			Description: "The message that you're sending the strategist. Talk about what the original plan was, what you tried, " +
				"why you think it's not going to work, and what the new plan should be. " +
				"Ask if there are some more APIs that you could call that might solve the problem.",
		},
		"originalRequest": {
			Type:        "string",
			Description: "An exact copy of the user's original request.",
		},
	},
	Required: []string{"message", "originalRequest"},
}

// Planner requests a fresh plan from the strategist. The orchestrator's
// Plan method satisfies it; the indirection keeps this package free of an
// orchestrator dependency.
type Planner func(ctx context.Context, message, originalRequest string) (string, error)

// AskStrategist lets the executor re-invoke the strategist mid-flight. A
// strategist that fails to answer degrades to a textual fallback, never an
// aborted turn.
type AskStrategist struct {
	plan Planner
}

// NewAskStrategist builds the ask-strategist tool.
func NewAskStrategist(plan Planner) *AskStrategist {
	return &AskStrategist{plan: plan}
}

func (t *AskStrategist) Name() string { return "ask-strategist" }

func (t *AskStrategist) Description() string { return askStrategistDescription }

func (t *AskStrategist) Schema() wire.Schema { return askStrategistSchema }

func (t *AskStrategist) Strict() bool { return true }

func (t *AskStrategist) Execute(ctx context.Context, args map[string]string) (string, error) {
	message, okMsg := args["message"]
	original, okReq := args["originalRequest"]
	if !okMsg || !okReq {
		return "You didn't give the strategist a message or the original request.", nil
	}
	if t.plan == nil {
		return "SYSTEM MESSAGE: The strategist did not respond. Try with the original request as best you can.", nil
	}
	strategy, err := t.plan(ctx, message, original)
	if err != nil || strategy == "" {
		return "SYSTEM MESSAGE: The strategist did not respond. Try with the original request as best you can.", nil
	}
	return strategy, nil
}
