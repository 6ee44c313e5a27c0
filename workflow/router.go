package workflow

import (
	"strings"

	"github.com/planweave/planweave/llm"
)

// Routing decisions.
type Decision string

const (
	// DecisionUseTools routes the turn to the task agent.
	DecisionUseTools Decision = "use_tools"
	// DecisionEnd terminates the turn with the planner's output.
	DecisionEnd Decision = "end"
	// DecisionContinuePlan routes a tool result back to the planner for the
	// next step.
	DecisionContinuePlan Decision = "continue_plan"
	// DecisionIntegrate routes back to the planner for final integration.
	DecisionIntegrate Decision = "integrate"
)

const (
	// routerWindow is how many trailing messages the predicates inspect.
	routerWindow = 10
	// substantialResultLength separates a real tool result from a stub: a
	// result longer than this keeps the plan going.
	substantialResultLength = 50

	// markerPlanBody matches plan announcements without the leading verb.
	markerPlanBody = "任務計劃"
	markerStepBody = "執行步驟"
)

// ShouldUseTools decides between tool use and ending the turn. Only an
// assistant message that requests tool assistance routes to the task agent.
func ShouldUseTools(messages []llm.ChatMessage) Decision {
	if len(messages) == 0 {
		return DecisionEnd
	}

	last := messages[len(messages)-1]
	if last.Role == llm.RoleAssistant && RequestsTools(last.Content) {
		return DecisionUseTools
	}
	return DecisionEnd
}

// ShouldUseToolsGuarded is ShouldUseTools with a loop guard: once tool
// results exist in the recent window, a repeated tool request is suppressed
// unless it advances the plan with a next-step marker. A heuristic against
// request loops, not a termination bound.
func ShouldUseToolsGuarded(messages []llm.ChatMessage) Decision {
	if ShouldUseTools(messages) != DecisionUseTools {
		return DecisionEnd
	}

	recent := recentWindow(messages, routerWindow)
	hasToolResults := false
	for _, msg := range recent {
		if msg.Role == llm.RoleTool {
			hasToolResults = true
			break
		}
	}
	if !hasToolResults {
		return DecisionUseTools
	}

	last := messages[len(messages)-1]
	if strings.Contains(last.Content, MarkerNextStep) || strings.Contains(last.Content, MarkerStep) {
		return DecisionUseTools
	}
	return DecisionEnd
}

// ShouldContinueOrIntegrate decides, after the task agent ran, whether the
// planner should execute the next plan step or integrate results. This
// predicate is the loop's only termination mechanism.
func ShouldContinueOrIntegrate(messages []llm.ChatMessage) Decision {
	if len(messages) == 0 {
		return DecisionIntegrate
	}

	recent := recentWindow(messages, routerWindow)

	var toolResults []llm.ChatMessage
	hasPlanMessages := false
	hasStepInstruction := false
	for _, msg := range recent {
		switch msg.Role {
		case llm.RoleTool:
			toolResults = append(toolResults, msg)
		case llm.RoleAssistant:
			if strings.Contains(msg.Content, markerPlanBody) || strings.Contains(msg.Content, markerStepBody) {
				hasPlanMessages = true
			}
			if strings.Contains(msg.Content, MarkerStep) {
				hasStepInstruction = true
			}
		}
	}

	if len(toolResults) > 0 {
		latest := toolResults[len(toolResults)-1].Content
		if len([]rune(latest)) > substantialResultLength {
			return DecisionContinuePlan
		}
		return DecisionIntegrate
	}

	if hasPlanMessages || hasStepInstruction {
		return DecisionContinuePlan
	}
	return DecisionIntegrate
}
