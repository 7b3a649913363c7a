package builtin

import (
	"context"
	"encoding/base64"

	"github.com/dynamaic/assistant-core/pkg/wire"
)

const screenshotDescription = "When the user asks for help or information on their screen, you can use this function to get a capture of their " +
	"running application. Can fail if screenshot permission is not allowed"

// Capture produces an encoded PNG of the current screen, already scaled to
// the endpoint's size constraints. Acquisition is platform plumbing outside
// the core.
type Capture func(ctx context.Context) ([]byte, error)

// Screenshot acknowledges the call textually and delivers the actual image
// as a callback input item in the following turn: the image is new content
// for the model, not part of the function-result acknowledgment.
type Screenshot struct {
	capture Capture
}

// NewScreenshot builds the take-screenshot tool around a capture capability.
func NewScreenshot(capture Capture) *Screenshot {
	return &Screenshot{capture: capture}
}

func (t *Screenshot) Name() string { return "take-screenshot" }

func (t *Screenshot) Description() string { return screenshotDescription }

func (t *Screenshot) Schema() wire.Schema { return wire.Schema{} }

func (t *Screenshot) Strict() bool { return true }

func (t *Screenshot) Execute(ctx context.Context, args map[string]string) (string, error) {
	return "SYSTEM MESSAGE: Taking screenshot. Will send in future call.", nil
}

// ProduceCallback captures the screen and wraps it as an image input item.
// A failed capture degrades to a developer note so the model proceeds
// without the image.
func (t *Screenshot) ProduceCallback(ctx context.Context, call wire.FunctionCall) wire.InputItem {
	if t.capture != nil {
		if png, err := t.capture(ctx); err == nil {
			return wire.ImageInput{
				Role:     "user",
				Text:     "Here is the image. Proceed with the original request.",
				ImageURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
			}
		}
	}
	return wire.TextInput{
		Role:    "developer",
		Content: "Failed to take a screenshot. Try to proceed without it.",
	}
}
