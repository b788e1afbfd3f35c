package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/michael-freling/claude-hookify/internal/config"
	"github.com/michael-freling/claude-hookify/internal/hooks"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds the flags shared by every subcommand.
type options struct {
	projectDir string
	debug      bool
	newLoader  func(projectDir string) config.Loader
}

func (o *options) resolveProjectDir() (string, error) {
	if o.projectDir != "" {
		return o.projectDir, nil
	}
	if dir := os.Getenv("CLAUDE_PROJECT_DIR"); dir != "" {
		return dir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return dir, nil
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithLoader(config.NewLoader)
}

func newRootCmdWithLoader(newLoader func(projectDir string) config.Loader) *cobra.Command {
	opts := &options{newLoader: newLoader}

	rootCmd := &cobra.Command{
		Use:   "hookify",
		Short: "Rule-based Claude Code hooks that warn about or block actions",
		Long: `A CLI tool that evaluates user-defined rules stored in .claude/hookify.*.local.md
against Claude Code hook events and prints the hook response JSON.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.projectDir, "project-dir", "", "project directory containing .claude/ (default $CLAUDE_PROJECT_DIR or the working directory)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log rule evaluation details to stderr")

	rootCmd.AddCommand(
		newHookCmd(opts, "pre-tool-use", hooks.PreToolUse),
		newHookCmd(opts, "post-tool-use", hooks.PostToolUse),
		newHookCmd(opts, "user-prompt-submit", hooks.UserPromptSubmit),
		newHookCmd(opts, "stop", hooks.Stop),
		newListCmd(opts),
		newSetEnabledCmd(opts, "enable", true),
		newSetEnabledCmd(opts, "disable", false),
	)

	return rootCmd
}

func newHookCmd(opts *options, use string, event hooks.HookEvent) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Evaluate rules for a %s hook event", event),
		Long: fmt.Sprintf(`Reads %s hook input from stdin as JSON, evaluates the enabled rules and
prints the hook response JSON to stdout. Prints {} when no rule fires.`, event),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := hooks.ParseInput(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to parse hook input: %w", err)
			}
			if input.HookEventName == "" {
				input.HookEventName = event
			}
			if input.HookEventName != event {
				return fmt.Errorf("hook_event_name %s does not match command %s", input.HookEventName, use)
			}

			projectDir, err := opts.resolveProjectDir()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)

			loaded, err := opts.newLoader(projectDir).Load(cmd.Context(), hooks.RuleEventFor(input))
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}
			for _, problem := range loaded.Problems {
				logger.Warn("skipping invalid rule file", "path", problem.Path, "error", problem.Err)
			}

			engine := hooks.NewRuleEngine(hooks.WithLogger(logger))
			resp := engine.EvaluateRules(loaded.Rules, input)

			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(resp); err != nil {
				return fmt.Errorf("failed to write hook response: %w", err)
			}
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := opts.resolveProjectDir()
			if err != nil {
				return err
			}

			loaded, err := opts.newLoader(projectDir).Load(cmd.Context(), "")
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEVENT\tACTION\tENABLED\tPATH")
			for _, rule := range loaded.Rules {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", rule.Name, rule.Event, rule.Action, rule.Enabled, rule.Path)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write rule list: %w", err)
			}

			for _, problem := range loaded.Problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "invalid rule file %s\n", problem.Error())
			}
			return nil
		},
	}
}

func newSetEnabledCmd(opts *options, use string, enabled bool) *cobra.Command {
	short := "Disable a rule by name"
	if enabled {
		short = "Enable a rule by name"
	}

	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := opts.resolveProjectDir()
			if err != nil {
				return err
			}

			path, err := config.FindRule(cmd.Context(), projectDir, args[0])
			if err != nil {
				return err
			}
			if err := config.SetEnabled(cmd.Context(), path, enabled); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %sd\n", args[0], use)
			return nil
		},
	}
}
