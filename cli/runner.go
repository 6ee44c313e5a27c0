// Command execution for CLI commands.
//
// Information Hiding:
// - Engine and provider setup hidden
// - Session wiring hidden
// - Output formatting hidden
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/planweave/planweave/config"
	"github.com/planweave/planweave/llm"
	"github.com/planweave/planweave/memory"
	"github.com/planweave/planweave/storage"
	"github.com/planweave/planweave/tools"
	"github.com/planweave/planweave/workflow"
)

// Options holds CLI execution options.
type Options struct {
	Provider  string
	SessionID string
	DBPath    string
	Verbose   bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		Provider: "gemini",
	}
}

// Ask executes a single conversational turn and prints the answer.
func Ask(ctx context.Context, message string, opts Options) error {
	engine, settings, err := buildEngine(ctx, opts)
	if err != nil {
		return err
	}

	result, err := engine.RunTurn(ctx, opts.SessionID, llm.UserMessage(message))
	if err != nil {
		return err
	}

	if opts.Verbose {
		printTrace(result.Trace, settings)
	}
	fmt.Println(result.Answer.Content)
	printGeneratedFiles(result.GeneratedFiles)
	return nil
}

// Chat starts an interactive conversation loop on stdin.
func Chat(ctx context.Context, opts Options) error {
	engine, settings, err := buildEngine(ctx, opts)
	if err != nil {
		return err
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = "default"
	}

	fmt.Printf("planweave chat (%s) — 輸入 exit 結束\n\n", settings.Planner.Model)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		result, err := engine.RunTurn(ctx, sessionID, llm.UserMessage(line))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if opts.Verbose {
			printTrace(result.Trace, settings)
		}
		fmt.Printf("\n%s\n\n", result.Answer.Content)
		printGeneratedFiles(result.GeneratedFiles)
	}
	return scanner.Err()
}

// ListTools prints the registered tool set.
func ListTools(ctx context.Context, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(ctx, settings)
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	for _, meta := range registry.List() {
		marker := " "
		if contains(settings.Tools.Enabled, meta.Name) {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, meta)
	}
	fmt.Println("\n(* enabled for the task agent)")
	return nil
}

// buildEngine wires settings, providers, tools, memory, and session storage
// into a ready workflow engine.
func buildEngine(ctx context.Context, opts Options) (*workflow.Engine, config.Settings, error) {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, config.Settings{}, err
	}

	plannerProvider, err := createProvider(settings.Planner)
	if err != nil {
		return nil, config.Settings{}, err
	}
	taskerProvider, err := createProvider(settings.Tasker)
	if err != nil {
		return nil, config.Settings{}, err
	}

	registry, err := buildRegistry(ctx, settings)
	if err != nil {
		return nil, config.Settings{}, err
	}

	plannerOpts := []workflow.PlannerOption{
		workflow.WithTokenBudget(settings.Workflow.TokenBudget),
	}
	if settings.Memory.Enabled {
		store, err := buildMemoryStore(settings)
		if err != nil {
			return nil, config.Settings{}, err
		}
		plannerOpts = append(plannerOpts,
			workflow.WithMemory(memory.NewGateway(store), settings.Memory.UserID))
	}

	planner := workflow.NewPlanner(llm.NewClient(plannerProvider), settings.Planner.Prompt, plannerOpts...)
	tasker := workflow.NewTasker(llm.NewClient(taskerProvider), registry, settings.Tasker.Prompt, settings.Tools.Enabled)

	sessions, err := buildSessionStorage(opts)
	if err != nil {
		return nil, config.Settings{}, err
	}

	engineOpts := []workflow.EngineOption{
		workflow.WithMaxTurns(settings.Workflow.MaxTurns),
		workflow.WithSessionStorage(sessions),
	}
	return workflow.NewEngine(planner, tasker, engineOpts...), settings, nil
}

func createProvider(agent config.AgentConfig) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(agent.Provider)
	if err != nil {
		return nil, err
	}
	apiKey, err := config.APIKeyFor(agent.Provider)
	if err != nil {
		return nil, err
	}
	return llm.New(providerType, apiKey, agent.Model, 4096, float32(agent.Temperature))
}

func buildRegistry(ctx context.Context, settings config.Settings) (*tools.Registry, error) {
	toolsetConfig := tools.DefaultGeminiConfig()
	toolsetConfig.OutputDir = settings.Tools.OutputDir

	toolset, err := tools.NewGeminiToolsetFromEnv(ctx, toolsetConfig)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry()
	if err := toolset.Register(registry, nil); err != nil {
		return nil, err
	}
	return registry, nil
}

func buildMemoryStore(settings config.Settings) (memory.Store, error) {
	if settings.Memory.DBPath != "" {
		return memory.OpenSqlite(settings.Memory.DBPath)
	}
	return memory.NewInMemoryStore(), nil
}

func buildSessionStorage(opts Options) (storage.ConversationStorage, error) {
	if opts.DBPath != "" {
		return storage.OpenSqlite(opts.DBPath)
	}
	return storage.NewInMemoryStorage(), nil
}

func printTrace(trace []workflow.TurnTrace, settings config.Settings) {
	for i, round := range trace {
		fmt.Fprintf(os.Stderr, "[round %d] routed=%s", i+1, round.Routed)
		if round.Continued != "" {
			fmt.Fprintf(os.Stderr, " then=%s", round.Continued)
		}
		fmt.Fprintln(os.Stderr)
	}
}

func printGeneratedFiles(files []workflow.GeneratedFile) {
	for _, f := range files {
		fmt.Printf("[generated] %s (%s) -> %s\n", f.Filename, f.Type, f.Path)
	}
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
