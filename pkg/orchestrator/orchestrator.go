// Package orchestrator drives the tool-calling turn loop: it sends one
// request per turn to the completion endpoint, executes every tool the model
// requests concurrently, folds the results into follow-up turns, and
// terminates with a final answer or a classified failure.
package orchestrator

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/dynamaic/assistant-core/pkg/record"
	"github.com/dynamaic/assistant-core/pkg/telemetry"
	"github.com/dynamaic/assistant-core/pkg/tool"
	"github.com/dynamaic/assistant-core/pkg/wire"
)

// executionFallback is substituted for a failing executor's output so the
// model sees the failure and can route around it instead of the whole turn
// aborting.
const executionFallback = "Failed to execute this function. Consider using a different function or workaround. Be creative."

const defaultMaxTurns = 16

// Sender issues one request envelope and returns the decoded response. The
// production implementation is client.Client.
type Sender interface {
	Send(ctx context.Context, req wire.Request) (*wire.Response, error)
}

// Sink receives ownership of a record once its turn loop terminates.
type Sink interface {
	Save(ctx context.Context, rec *record.Record) error
}

// InstructionSource provides the current system instructions for a prompt
// role. config.Instructions satisfies it.
type InstructionSource interface {
	Get() string
}

// Options configures an Orchestrator.
type Options struct {
	Model           string
	StrategistModel string

	Instructions           InstructionSource
	StrategistInstructions InstructionSource
	ExecutorInstructions   InstructionSource

	// Strategist enables the two-stage planning variant: a planning turn
	// precedes the executor loop and its plan is prepended to the user
	// message.
	Strategist bool

	// MaxTurns bounds the recursive fan-out for one user request. Zero
	// selects the default.
	MaxTurns int

	// Sink, when set, receives the completed record. A sink failure never
	// fails the turn; the record is still returned to the caller.
	Sink Sink

	Telemetry *telemetry.Manager
}

// Orchestrator owns the turn loop for one configured assistant.
type Orchestrator struct {
	sender   Sender
	registry *tool.Registry
	opts     Options
}

// New builds an Orchestrator. All collaborators arrive by injection; the
// orchestrator holds no global state.
func New(sender Sender, registry *tool.Registry, opts Options) (*Orchestrator, error) {
	if sender == nil {
		return nil, errors.New("orchestrator: sender is nil")
	}
	if registry == nil {
		return nil, errors.New("orchestrator: registry is nil")
	}
	if opts.Model == "" {
		return nil, errors.New("orchestrator: model is required")
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = defaultMaxTurns
	}
	if opts.StrategistModel == "" {
		opts.StrategistModel = opts.Model
	}
	return &Orchestrator{sender: sender, registry: registry, opts: opts}, nil
}

// Respond runs the full turn loop for one user request. When prev is
// non-nil the conversation is threaded onto its response identifier. The
// returned record is always non-nil, including on failure.
func (o *Orchestrator) Respond(ctx context.Context, message string, prev *record.Record) (*record.Record, error) {
	rec := record.New(message)
	prevID := ""
	if prev != nil {
		prevID = prev.ResponseID()
	}

	ctx, span := o.opts.Telemetry.StartSpan(ctx, "orchestrator.respond",
		attribute.String("model", o.opts.Model),
		attribute.Bool("strategist", o.opts.Strategist),
		attribute.Bool("continuation", prevID != ""),
	)
	rec, err := o.respond(ctx, message, prevID, rec)
	telemetry.EndSpan(span, err)
	return rec, err
}

func (o *Orchestrator) respond(ctx context.Context, message, prevID string, rec *record.Record) (*record.Record, error) {
	var (
		resp *wire.Response
		err  error
	)
	if o.opts.Strategist {
		resp, err = o.strategistRun(ctx, message, prevID, rec)
	} else {
		req := o.newRequest(o.opts.Model, instructionsOf(o.opts.Instructions),
			[]wire.InputItem{wire.UserText(message)}, prevID)
		resp, err = o.execute(ctx, req, rec, 0)
	}
	if err != nil {
		rec.SetError(err.Error())
		o.handOff(ctx, rec)
		return rec, err
	}

	text, ok := resp.TextMessage()
	if !ok {
		failure := &NoAnswerError{Record: rec}
		rec.SetError(failure.Error())
		o.handOff(ctx, rec)
		return rec, failure
	}
	rec.SetOutcome(resp.ID, text)
	o.handOff(ctx, rec)
	return rec, nil
}

// execute performs one send and resolves any tool calls the response
// requests, recursing until a response with no outstanding calls remains.
func (o *Orchestrator) execute(ctx context.Context, req wire.Request, rec *record.Record, depth int) (*wire.Response, error) {
	resp, err := o.send(ctx, req, rec, depth)
	if err != nil {
		return nil, err
	}
	return o.resolve(ctx, resp, req, rec, depth)
}

func (o *Orchestrator) send(ctx context.Context, req wire.Request, rec *record.Record, depth int) (*wire.Response, error) {
	ctx, span := o.opts.Telemetry.StartSpan(ctx, "orchestrator.turn",
		attribute.String("model", req.Model),
		attribute.Int("depth", depth),
	)
	resp, err := o.sender.Send(ctx, req)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, &TurnError{Record: rec, Err: err}
	}
	if resp.ID != "" {
		rec.SetResponseID(resp.ID)
	}
	return resp, nil
}

// resolve inspects a decoded response for requested tool calls, dispatches
// them, and folds the outputs into follow-up turns. Function results and
// callback-produced items travel in separate requests: an acknowledgment of
// call X and new content for the model are different input-item variants and
// must not be mixed into one ambiguous item.
func (o *Orchestrator) resolve(ctx context.Context, resp *wire.Response, req wire.Request, rec *record.Record, depth int) (*wire.Response, error) {
	if resp.Error != nil {
		return resp, &RemoteError{Code: resp.Error.Code, Message: resp.Error.Message, Record: rec}
	}

	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		return resp, nil
	}
	if depth >= o.opts.MaxTurns {
		return resp, &TurnLimitError{MaxTurns: o.opts.MaxTurns, Record: rec}
	}

	results, callbacks, err := o.dispatch(ctx, calls, rec)
	if err != nil {
		return resp, err
	}

	latest := resp
	if len(results) > 0 {
		next := req
		next.Input = results
		next.PreviousResponseID = latest.ID
		latest, err = o.execute(ctx, next, rec, depth+1)
		if err != nil {
			return latest, err
		}
	}
	if len(callbacks) > 0 {
		next := req
		next.Input = callbacks
		next.PreviousResponseID = latest.ID
		latest, err = o.execute(ctx, next, rec, depth+1)
		if err != nil {
			return latest, err
		}
	}

	// The sub-turns above bottom out on call-free responses, so this final
	// pass is a termination guard for anything the model re-emitted.
	return o.resolve(ctx, latest, req, rec, depth+1)
}

// dispatch executes one batch of function calls in parallel and joins on
// the whole batch. An unknown tool name fails the batch and cancels its
// siblings; an individual executor failure is isolated and substituted with
// the fallback string.
func (o *Orchestrator) dispatch(ctx context.Context, calls []wire.FunctionCall, rec *record.Record) ([]wire.InputItem, []wire.InputItem, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]wire.InputItem, len(calls))
	callbacks := make([]wire.InputItem, len(calls))

	for i, call := range calls {
		g.Go(func() error {
			t, err := o.registry.Lookup(call.Name)
			if err != nil {
				var nf *tool.NotFoundError
				if errors.As(err, &nf) {
					return &UnknownToolError{Name: call.Name, Record: rec}
				}
				return err
			}

			output, execErr := t.Execute(gctx, call.Arguments)
			if execErr != nil {
				output = executionFallback
			}
			result := wire.FunctionResult{CallID: call.CallID, Output: output}
			results[i] = result

			var callback wire.InputItem
			if producer, ok := t.(tool.CallbackProducer); ok {
				callback = producer.ProduceCallback(gctx, call)
				callbacks[i] = callback
			}

			rec.RecordCall(call, result, callback)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	resultBatch := make([]wire.InputItem, 0, len(calls))
	var callbackBatch []wire.InputItem
	for i := range calls {
		resultBatch = append(resultBatch, results[i])
		if callbacks[i] != nil {
			callbackBatch = append(callbackBatch, callbacks[i])
		}
	}
	return resultBatch, callbackBatch, nil
}

func (o *Orchestrator) newRequest(model, instructions string, input []wire.InputItem, prevID string) wire.Request {
	req := wire.NewRequest(model, instructions, input, o.registry.Descriptors())
	req.PreviousResponseID = prevID
	return req
}

func (o *Orchestrator) handOff(ctx context.Context, rec *record.Record) {
	if o.opts.Sink == nil {
		return
	}
	// History loss must not fail an otherwise-finished turn; the record is
	// still returned to the caller.
	_ = o.opts.Sink.Save(ctx, rec)
}

func instructionsOf(src InstructionSource) string {
	if src == nil {
		return ""
	}
	return src.Get()
}
