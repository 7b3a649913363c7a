// Package tool defines the locally-executable capabilities the model may
// invoke by name, and the static registry that resolves those names.
package tool

import (
	"context"

	"github.com/dynamaic/assistant-core/pkg/wire"
)

// Tool is one callable capability. Execute maps the call's argument map to a
// textual result; implementations should return an error for internal
// failures and let the orchestrator substitute the fallback string, so that
// one failing tool never aborts its siblings.
type Tool interface {
	Name() string
	Description() string
	Schema() wire.Schema
	Strict() bool
	Execute(ctx context.Context, args map[string]string) (string, error)
}

// CallbackProducer is implemented by tools whose true output is not textual.
// ProduceCallback maps the original call to one additional input item (for
// example an image) destined for the turn after the acknowledgment.
type CallbackProducer interface {
	ProduceCallback(ctx context.Context, call wire.FunctionCall) wire.InputItem
}
