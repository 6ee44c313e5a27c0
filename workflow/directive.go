package workflow

import (
	"strings"
)

// Marker phrases the planner embeds in its output. The plan is free text;
// these substrings are the entire protocol between the two agents.
const (
	// MarkerNeedTools flags that the planner wants a tool invoked.
	MarkerNeedTools = "需要工具協助"
	// MarkerPlan opens a full task plan.
	MarkerPlan = "執行任務計劃"
	// MarkerStep opens a single step instruction.
	MarkerStep = "執行步驟："
	// MarkerUseTool opens a direct tool request.
	MarkerUseTool = "請使用"
	// MarkerInstruction introduces the free-text instruction in a direct
	// tool request.
	MarkerInstruction = "具體指令："
	// MarkerNextStep flags plan advancement in the loop-guarded router
	// variant.
	MarkerNextStep = "下一步"

	// markerFileContext terminates the tool name in a direct tool request.
	markerFileContext = "處理檔案"
)

// stepMarkers are the phrases that, combined with MarkerNeedTools, commit
// the planner's output to tool use.
var stepMarkers = []string{MarkerPlan, MarkerStep, MarkerUseTool}

// DirectiveKind tags how an instruction was extracted.
type DirectiveKind int

const (
	// DirectiveNone means no instruction grammar matched; the task agent
	// proceeds with default prompt construction.
	DirectiveNone DirectiveKind = iota
	// DirectiveStep came from the "執行步驟：使用 X 工具 - 描述" grammar.
	DirectiveStep
	// DirectiveUseTool came from the "請使用 X ... 具體指令：描述" grammar.
	DirectiveUseTool
)

// Directive is the parsed form of a planner tool request.
type Directive struct {
	Kind        DirectiveKind
	Tool        string
	Description string
}

// RequestsTools reports whether content asks for tool assistance: it must
// carry the need-tools marker together with at least one step marker.
func RequestsTools(content string) bool {
	if !strings.Contains(content, MarkerNeedTools) {
		return false
	}
	for _, marker := range stepMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// ParseDirective extracts a (tool, description) pair from planner output by
// trying each instruction grammar in turn. Both grammars failing yields a
// DirectiveNone directive, never an error: malformed instructions fall back
// to default behavior.
func ParseDirective(content string) Directive {
	if d, ok := parseStepDirective(content); ok {
		return d
	}
	if d, ok := parseUseToolDirective(content); ok {
		return d
	}
	return Directive{Kind: DirectiveNone}
}

// parseStepDirective handles "執行步驟：使用 X 工具 - 描述".
func parseStepDirective(content string) (Directive, bool) {
	_, after, found := strings.Cut(content, MarkerStep)
	if !found {
		return Directive{}, false
	}
	stepContent := strings.TrimSpace(after)

	toolPart, description, found := strings.Cut(stepContent, " - ")
	if !found {
		return Directive{}, false
	}
	toolPart = strings.TrimSpace(toolPart)
	description = strings.TrimSpace(description)

	tool := toolPart
	if strings.Contains(toolPart, "使用") && strings.Contains(toolPart, "工具") {
		_, afterUse, _ := strings.Cut(toolPart, "使用")
		beforeTool, _, _ := strings.Cut(afterUse, "工具")
		tool = strings.TrimSpace(beforeTool)
	}

	return Directive{Kind: DirectiveStep, Tool: tool, Description: description}, true
}

// parseUseToolDirective handles "請使用 X 處理檔案 ... 具體指令：描述".
func parseUseToolDirective(content string) (Directive, bool) {
	if !strings.Contains(content, MarkerUseTool) || !strings.Contains(content, MarkerInstruction) {
		return Directive{}, false
	}

	_, afterUse, _ := strings.Cut(content, MarkerUseTool)
	toolPart, _, _ := strings.Cut(afterUse, markerFileContext)
	tool := strings.TrimSpace(toolPart)

	_, afterInstruction, _ := strings.Cut(content, MarkerInstruction)
	description := strings.TrimSpace(afterInstruction)

	return Directive{Kind: DirectiveUseTool, Tool: tool, Description: description}, true
}
