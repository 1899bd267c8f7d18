// Package workflow sequences the recipe adaptation pipeline: a Planner agent
// produces a schema-validated substitution/conversion plan, the unit
// conversion tool standardizes the planned quantities, and a Stylist agent
// rewrites the recipe using the accumulated session memory. The state machine
// is linear (PLANNING -> CONVERTING -> STYLING -> DONE) and fail-fast: a
// failure at any state terminates the run with no partial output.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/recipeflow/agent"
	"github.com/hupe1980/recipeflow/core"
	"github.com/hupe1980/recipeflow/logging"
	"github.com/hupe1980/recipeflow/plan"
	"github.com/hupe1980/recipeflow/tool"
)

// State identifies a stage of the workflow state machine.
type State int

const (
	// StatePlanning is the Planner agent stage (structured output).
	StatePlanning State = iota
	// StateConverting is the deterministic unit conversion stage.
	StateConverting
	// StateStyling is the Stylist agent stage (free text output).
	StateStyling
	// StateDone is the terminal success state.
	StateDone
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePlanning:
		return "PLANNING"
	case StateConverting:
		return "CONVERTING"
	case StateStyling:
		return "STYLING"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// ConversionOutcome captures one standardized quantity. Ephemeral: it exists
// only to build the Stylist prompt.
type ConversionOutcome struct {
	OriginalAmount  float64
	OriginalUnit    string
	ConvertedAmount float64
	TargetUnit      string
}

// String renders the outcome as the conversion note line embedded in the
// Stylist prompt.
func (o ConversionOutcome) String() string {
	return fmt.Sprintf("Original: %v %s. Standardized: %v %s.",
		o.OriginalAmount, o.OriginalUnit, o.ConvertedAmount, o.TargetUnit)
}

// Options configure a Workflow.
type Options struct {
	// Converter is the deterministic tool invoked during CONVERTING.
	// Defaults to tool.NewUnitConverter().
	Converter tool.Tool
	// Logger receives stage diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// EventSink, when set, receives observability events as the run progresses.
	EventSink func(core.Event)
}

// Workflow is the orchestrator owning one run's state machine. It holds no
// per-run state itself; a fresh PlanningResult and outcome set are created
// per Adapt call and discarded at completion, so a Workflow is safe to reuse.
type Workflow struct {
	invoker *agent.Invoker
	opts    Options
}

// New constructs a Workflow around the given invoker.
func New(invoker *agent.Invoker, optFns ...func(o *Options)) *Workflow {
	opts := Options{
		Converter: tool.NewUnitConverter(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Converter == nil {
		opts.Converter = tool.NewUnitConverter()
	}
	return &Workflow{invoker: invoker, opts: opts}
}

const (
	plannerName = "Planner"
	stylistName = "Stylist"

	plannerSystemPrompt = "You are the expert Recipe Planner. Your sole job is to identify " +
		"substitutions to match the target style and output the result in the required JSON schema."
)

// Adapt runs the full pipeline for one recipe and returns the final styled
// recipe text. The run either completes with a full recipe or terminates with
// an error naming the failing stage; there is no partial-success mode.
func (w *Workflow) Adapt(ctx context.Context, originalRecipe, targetStyle string) (string, error) {
	runID := core.NewID()
	logger := w.opts.Logger

	// --- PLANNING ---
	w.transition(runID, StatePlanning)

	result, err := w.runPlanner(ctx, originalRecipe, targetStyle)
	if err != nil {
		return "", w.abort(runID, StatePlanning, err)
	}

	logger.Info("workflow.plan.ready", "run_id", runID,
		"substitutions", len(result.Substitutions), "conversions", len(result.Conversions))

	// --- CONVERTING (cannot fail; malformed entries are skipped) ---
	w.transition(runID, StateConverting)

	outcomes := w.runConversions(runID, result)

	// --- STYLING ---
	w.transition(runID, StateStyling)

	finalText, err := w.runStylist(ctx, originalRecipe, targetStyle, result, outcomes)
	if err != nil {
		return "", w.abort(runID, StateStyling, err)
	}

	// --- DONE ---
	w.transition(runID, StateDone)
	w.emit(core.NewMessageEvent(runID, stylistName, finalText))

	return finalText, nil
}

// runPlanner invokes the Planner agent with the planning schema and parses
// the structured payload into the run's session memory.
func (w *Workflow) runPlanner(ctx context.Context, originalRecipe, targetStyle string) (*plan.PlanningResult, error) {
	env := agent.Envelope{
		AgentName:    plannerName,
		SystemPrompt: plannerSystemPrompt,
		UserPrompt: fmt.Sprintf(
			"ORIGINAL RECIPE: %q\nTARGET TRANSFORMATION: %q\n"+
				"Analyze the recipe and generate a comprehensive Substitution Map and a list of necessary Unit Conversions.",
			originalRecipe, targetStyle,
		),
	}

	data, err := w.invoker.InvokeStructured(ctx, env, plan.Schema())
	if err != nil {
		return nil, err
	}

	return plan.Parse(data)
}

// runConversions executes the unit conversion tool for every well-formed
// conversion entry. Entries missing amount/unit/to_unit are silently skipped;
// the Planner's conversion list is loosely typed on purpose.
func (w *Workflow) runConversions(runID string, result *plan.PlanningResult) []ConversionOutcome {
	var outcomes []ConversionOutcome

	for _, entry := range result.Conversions {
		pc, ok := plan.ParseConversion(entry)
		if !ok {
			continue
		}

		args := map[string]any{"amount": pc.Amount, "unit": pc.Unit}
		toolCtx := core.NewToolContext(runID, core.NewID(), w.opts.Logger)

		converted, err := w.opts.Converter.Call(toolCtx, args)
		if err != nil {
			// The converter has no failure mode for well-formed entries; a
			// misconfigured replacement tool degrades to identity conversion.
			w.opts.Logger.Warn("workflow.convert.tool_error", "run_id", runID, "error", err.Error())
			converted = pc.Amount
		}

		amount, ok := converted.(float64)
		if !ok {
			amount = pc.Amount
		}

		outcome := ConversionOutcome{
			OriginalAmount:  pc.Amount,
			OriginalUnit:    pc.Unit,
			ConvertedAmount: amount,
			TargetUnit:      pc.ToUnit,
		}
		outcomes = append(outcomes, outcome)

		w.emit(core.NewToolEvent(runID, w.opts.Converter.Name(), args, map[string]any{
			"converted_amount": outcome.ConvertedAmount,
			"target_unit":      outcome.TargetUnit,
		}))
	}

	return outcomes
}

// runStylist invokes the Stylist agent with the serialized session memory and
// conversion notes. No schema is requested; the result is free text.
func (w *Workflow) runStylist(
	ctx context.Context,
	originalRecipe, targetStyle string,
	result *plan.PlanningResult,
	outcomes []ConversionOutcome,
) (string, error) {
	notes := make([]string, len(outcomes))
	for i, o := range outcomes {
		notes[i] = o.String()
	}

	env := agent.Envelope{
		AgentName: stylistName,
		SystemPrompt: fmt.Sprintf(
			"You are the expert Technical Recipe Stylist. Your job is to take the provided context "+
				"and rewrite the final, well-formatted recipe in the style of '%s' cuisine.",
			targetStyle,
		),
		UserPrompt: fmt.Sprintf(
			"ORIGINAL RECIPE: %s\nSUBSTITUTION MAP (CRITICAL MEMORY): %s\nCONVERSION NOTES:\n%s\n\n"+
				"Your task is to rewrite the ORIGINAL RECIPE entirely, applying all substitutions and conversions. "+
				"Rewrite the instructions to sound authentic for the '%s' style.",
			originalRecipe, result.SubstitutionMemory(), strings.Join(notes, "\n"), targetStyle,
		),
	}

	return w.invoker.InvokeText(ctx, env)
}

func (w *Workflow) transition(runID string, to State) {
	w.opts.Logger.Info("workflow.stage", "run_id", runID, "state", to.String())
	w.emit(core.NewStageEvent(runID, to.String()))
}

func (w *Workflow) abort(runID string, at State, err error) error {
	wrapped := fmt.Errorf("workflow aborted in %s: %w", at, err)
	w.opts.Logger.Error("workflow.abort", "run_id", runID, "state", at.String(), "error", err.Error())
	w.emit(core.NewErrorEvent(runID, at.String(), err))
	return wrapped
}

func (w *Workflow) emit(e core.Event) {
	if w.opts.EventSink != nil {
		w.opts.EventSink(e)
	}
}
