// Package main provides the planweave CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/planweave/planweave/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "planweave",
		Short: "Two-agent plan/execute conversational workflow",
		Long: `A conversational workflow where a planning agent decomposes requests
into tool steps and a task agent executes them (web search, image
analysis, image generation), looping until the plan is complete.`,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "gemini", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show routing decisions per round")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Run a single conversational turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider:  provider,
				SessionID: sessionID,
				DBPath:    dbPath,
				Verbose:   verbose,
			}
			return cli.Ask(context.Background(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite path for session storage (in-memory if empty)")

	return cmd
}

func chatCmd() *cobra.Command {
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider:  provider,
				SessionID: sessionID,
				DBPath:    dbPath,
				Verbose:   verbose,
			}
			return cli.Chat(context.Background(), opts)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "default", "Session ID for conversation persistence")
	cmd.Flags().StringVar(&dbPath, "db", ".planweave/planweave.db", "SQLite path for session storage")

	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(context.Background(), cli.Options{Provider: provider})
		},
	}
}
