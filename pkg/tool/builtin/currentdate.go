// Package builtin provides the default tool set the assistant advertises to
// the model.
package builtin

import (
	"context"
	"time"

	"github.com/dynamaic/assistant-core/pkg/wire"
)

const currentDateDescription = "When the user asks for date-specific information, you are granted access to this information using this function, " +
	"which returns an ISO-8601 string. Note, you do not have to use the entire data for any given response. " +
	"If the user asks for the time, give it to them in their local time zone."

// CurrentDate reports the current local time as an ISO-8601 string.
type CurrentDate struct {
	now func() time.Time
}

// NewCurrentDate builds the current-date tool.
func NewCurrentDate() *CurrentDate {
	return &CurrentDate{now: time.Now}
}

func (t *CurrentDate) Name() string { return "current-date" }

func (t *CurrentDate) Description() string { return currentDateDescription }

func (t *CurrentDate) Schema() wire.Schema { return wire.Schema{} }

func (t *CurrentDate) Strict() bool { return false }

func (t *CurrentDate) Execute(ctx context.Context, args map[string]string) (string, error) {
	return t.now().Format(time.RFC3339), nil
}
