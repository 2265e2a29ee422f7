package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"career-backend/internal/advisor"
	"career-backend/internal/bootstrap"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/telemetry"
)

type profileFlags struct {
	skills      string
	currentRole string
	targetRole  string
	experience  string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.skills, "skills", "", "Current skills (required)")
	cmd.Flags().StringVar(&f.currentRole, "current-role", "", "Current role")
	cmd.Flags().StringVar(&f.targetRole, "target-role", "", "Target role (required)")
	cmd.Flags().StringVar(&f.experience, "experience", "", "Years of experience")
}

func (f *profileFlags) profile() advisor.Profile {
	return advisor.Profile{
		Skills:      f.skills,
		CurrentRole: f.currentRole,
		TargetRole:  f.targetRole,
		Experience:  f.experience,
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "advise",
		Short:         "Run career tech-stack analyses from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return telemetry.Init(level, "console")
		},
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newPromptCmd(), newAnalyzeCmd(), newValidateCmd())
	return root
}

func newPromptCmd() *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system and user prompts for a profile without calling the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts, err := advisor.Build(flags.profile())
			if err != nil {
				return report(cmd, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== system ===")
			fmt.Fprintln(out, strings.TrimSpace(prompts.System))
			fmt.Fprintln(out, "=== user ===")
			fmt.Fprintln(out, prompts.User)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var (
		flags   profileFlags
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a profile against the configured completion backend",
		Long: `Builds the prompts, performs exactly one completion call and prints the
validated recommendation document as JSON.

Backend settings come from the same environment as the API server
(LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL, REQUEST_TIMEOUT).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := advisor.Build(flags.profile()); err != nil {
				return report(cmd, err)
			}
			cfg, err := config.Load()
			if err != nil {
				return report(cmd, err)
			}
			if err := cfg.Validate(); err != nil {
				return report(cmd, advisor.NewConfigurationError(err))
			}
			completer, model, err := bootstrap.BuildCompleter(cmd.Context(), cfg)
			if err != nil {
				return report(cmd, err)
			}
			pipeline := advisor.NewPipeline(&advisor.Gateway{Completer: completer, Model: model, Timeout: cfg.RequestTimeout})
			doc, err := pipeline.Analyze(cmd.Context(), flags.profile())
			if err != nil {
				return report(cmd, err)
			}
			return writeDocument(cmd.OutOrStdout(), outPath, doc)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "Write the document to this file instead of stdout")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Extract and validate a recommendation document from a saved completion (stdin when no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return report(cmd, fmt.Errorf("read completion: %w", err))
			}
			doc, err := advisor.Decode(string(data))
			if err != nil {
				return report(cmd, err)
			}
			return writeDocument(cmd.OutOrStdout(), "", doc)
		},
	}
}

func writeDocument(w io.Writer, outPath string, doc advisor.Document) error {
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	pretty = append(pretty, '\n')
	if outPath == "" {
		_, err = w.Write(pretty)
		return err
	}
	return os.WriteFile(outPath, pretty, 0o644)
}

// report prints a kind-specific message to stderr and returns err for the exit code.
func report(cmd *cobra.Command, err error) error {
	var e *advisor.Error
	if errors.As(err, &e) {
		line := fmt.Sprintf("%s: %s", e.Kind, e.Message)
		if e.Kind == advisor.KindSchemaViolation && e.Path != "" && !strings.Contains(e.Message, e.Path) {
			line += " (" + e.Path + ")"
		}
		fmt.Fprintln(cmd.ErrOrStderr(), line)
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
	return err
}
