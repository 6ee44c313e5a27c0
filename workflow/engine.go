package workflow

import (
	"context"
	"fmt"

	"github.com/planweave/planweave/llm"
	"github.com/planweave/planweave/storage"
)

// DefaultMaxTurns caps planner invocations per user turn. The routing
// predicates carry no termination bound of their own, so the engine
// enforces one.
const DefaultMaxTurns = 12

// TurnTrace records one planner/tasker round for inspection.
type TurnTrace struct {
	// PlannerOutput is the planner's message for this round.
	PlannerOutput string
	// Routed is the tool-use decision taken on the planner's output.
	Routed Decision
	// Continued is the continue-or-integrate decision after the task agent
	// ran; empty when the round ended without tool use.
	Continued Decision
}

// Engine drives the two-agent loop: planner output is routed either to the
// task agent or out of the turn, and task-agent results always return to
// the planner for the next step or final integration.
type Engine struct {
	planner  *Planner
	tasker   *Tasker
	sessions storage.ConversationStorage
	maxTurns int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSessionStorage persists conversation history across turns under a
// session id.
func WithSessionStorage(store storage.ConversationStorage) EngineOption {
	return func(e *Engine) { e.sessions = store }
}

// WithMaxTurns overrides the planner-invocation cap.
func WithMaxTurns(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// NewEngine creates a workflow engine over a planner and a task agent.
func NewEngine(planner *Planner, tasker *Tasker, opts ...EngineOption) *Engine {
	e := &Engine{
		planner:  planner,
		tasker:   tasker,
		maxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	// Answer is the planner's final message for the turn.
	Answer llm.ChatMessage
	// State is the full conversation state after the turn.
	State State
	// GeneratedFiles are files produced during the turn.
	GeneratedFiles []GeneratedFile
	// Trace records the rounds the turn took.
	Trace []TurnTrace
}

// RunTurn executes one user turn to completion: load session history,
// append the user message, alternate planner and task agent until the
// planner answers without requesting tools or the turn cap is reached,
// then persist the session.
func (e *Engine) RunTurn(ctx context.Context, sessionID string, userMsg llm.ChatMessage) (TurnResult, error) {
	state, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	state = state.Append(userMsg)

	result := TurnResult{}
	for turn := 0; turn < e.maxTurns; turn++ {
		plan := e.planner.Run(ctx, state)
		state = state.Append(plan.Response)
		state.GeneratedFiles = append(state.GeneratedFiles, plan.GeneratedFiles...)

		trace := TurnTrace{
			PlannerOutput: plan.Response.Content,
			Routed:        ShouldUseTools(state.Messages),
		}
		if trace.Routed != DecisionUseTools {
			result.Trace = append(result.Trace, trace)
			break
		}
		if turn == e.maxTurns-1 {
			// Cap reached with an unsatisfied tool request; the planner's
			// last message stands as the turn output.
			result.Trace = append(result.Trace, trace)
			break
		}

		taskMsgs := e.tasker.Run(ctx, state)
		state = state.Append(taskMsgs...)

		// Both outcomes return to the planner; the decision is recorded for
		// inspection and testing.
		trace.Continued = ShouldContinueOrIntegrate(state.Messages)
		result.Trace = append(result.Trace, trace)
	}

	if err := e.saveSession(ctx, sessionID, state); err != nil {
		return TurnResult{}, err
	}

	answer, ok := state.LastMessage()
	if !ok {
		return TurnResult{}, fmt.Errorf("workflow: turn produced no messages")
	}
	result.Answer = answer
	result.State = state
	result.GeneratedFiles = state.GeneratedFiles
	return result, nil
}

func (e *Engine) loadSession(ctx context.Context, sessionID string) (State, error) {
	if e.sessions == nil || sessionID == "" {
		return NewState(), nil
	}
	msgs, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return State{}, fmt.Errorf("workflow: load session %q: %w", sessionID, err)
	}
	return State{Messages: msgs}, nil
}

func (e *Engine) saveSession(ctx context.Context, sessionID string, state State) error {
	if e.sessions == nil || sessionID == "" {
		return nil
	}
	if err := e.sessions.Save(ctx, sessionID, state.Messages); err != nil {
		return fmt.Errorf("workflow: save session %q: %w", sessionID, err)
	}
	return nil
}
