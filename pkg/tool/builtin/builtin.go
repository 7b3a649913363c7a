package builtin

import (
	"github.com/dynamaic/assistant-core/pkg/container"
	"github.com/dynamaic/assistant-core/pkg/tool"
)

// Deps carries the injected capabilities the default tool set closes over.
// Nil capabilities drop the tools that need them from the set.
type Deps struct {
	Containers *container.Store
	Capture    Capture
	Open       Opener
	Plan       Planner
}

// Defaults returns the default tool set in its advertised order.
func Defaults(deps Deps) []tool.Tool {
	tools := []tool.Tool{NewCurrentDate(), NewPublicGet()}
	if deps.Containers != nil {
		tools = append(tools, NewLocalStorage(deps.Containers))
	}
	if deps.Open != nil {
		tools = append(tools, NewOpenURL(deps.Open))
	}
	if deps.Capture != nil {
		tools = append(tools, NewScreenshot(deps.Capture))
	}
	if deps.Plan != nil {
		tools = append(tools, NewAskStrategist(deps.Plan))
	}
	return tools
}
