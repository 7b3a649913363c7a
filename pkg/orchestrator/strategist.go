package orchestrator

import (
	"context"
	"fmt"

	"github.com/dynamaic/assistant-core/pkg/record"
	"github.com/dynamaic/assistant-core/pkg/wire"
)

// strategistRun performs the two-stage variant: a planning turn with tool
// choice forced, then the main executor loop with the plan prepended to the
// user message. The strategist's own tool trace stays out of the
// user-visible record.
func (o *Orchestrator) strategistRun(ctx context.Context, message, prevID string, rec *record.Record) (*wire.Response, error) {
	scratch := record.New(message)
	planReq := o.newRequest(o.opts.StrategistModel, instructionsOf(o.opts.StrategistInstructions),
		[]wire.InputItem{wire.UserText(message)}, prevID)
	planReq.ToolChoice = wire.ToolChoiceRequired

	planResp, err := o.execute(ctx, planReq, scratch, 0)
	if err != nil {
		return nil, reparent(err, rec)
	}
	strategy, ok := planResp.TextMessage()
	if !ok {
		return nil, &NoStrategyError{Record: rec}
	}

	combined := fmt.Sprintf("<REQUEST>\n%s\n</REQUEST>\n\n<PLAN FROM STRATEGIST>\n%s\n</PLAN>", message, strategy)
	execReq := o.newRequest(o.opts.Model, instructionsOf(o.opts.ExecutorInstructions),
		[]wire.InputItem{wire.UserText(combined)}, prevID)
	return o.execute(ctx, execReq, rec, 0)
}

// Plan re-invokes the strategist mid-flight on behalf of the executor. It is
// wired into the ask-strategist tool; the tool degrades to a textual
// fallback when no plan comes back, so Plan's error never unwinds a turn.
func (o *Orchestrator) Plan(ctx context.Context, message, originalRequest string) (string, error) {
	combined := fmt.Sprintf("<CALLBACK FROM EXECUTOR>\n%s\n</CALLBACK FROM EXECUTOR>\n\n<ORIGINAL REQUEST>\n%s\n</ORIGINAL REQUEST>", message, originalRequest)
	scratch := record.New(combined)
	req := o.newRequest(o.opts.Model, instructionsOf(o.opts.StrategistInstructions),
		[]wire.InputItem{wire.UserText(combined)}, "")

	resp, err := o.execute(ctx, req, scratch, 0)
	if err != nil {
		return "", err
	}
	strategy, ok := resp.TextMessage()
	if !ok {
		return "", &NoStrategyError{Record: scratch}
	}
	return strategy, nil
}

// reparent points a terminal failure from a scratch record at the
// user-visible one.
func reparent(err error, rec *record.Record) error {
	switch e := err.(type) {
	case *TurnError:
		return &TurnError{Record: rec, Err: e.Err}
	case *RemoteError:
		return &RemoteError{Code: e.Code, Message: e.Message, Record: rec}
	case *UnknownToolError:
		return &UnknownToolError{Name: e.Name, Record: rec}
	case *TurnLimitError:
		return &TurnLimitError{MaxTurns: e.MaxTurns, Record: rec}
	default:
		return err
	}
}
