package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/martinemde/longhaul/agent"
	"github.com/martinemde/longhaul/harness"
	"github.com/martinemde/longhaul/llm"
)

var (
	projectDir    string
	projectName   string
	specFile      string
	extraFiles    []string
	maxIterations int
	model         string
	logFile       string
	promptsDir    string
)

// rootCmd represents the base command - runs directly without subcommand
var rootCmd = &cobra.Command{
	Use:   "longhaul",
	Short: "Run a long-running autonomous coding agent",
	Long: `longhaul drives an autonomous coding agent against an application spec
over many sessions. Projects live under the generations/ directory; an
interrupted run resumes by re-running the same command.

Examples:
  longhaul --project-dir my_app
  longhaul --spec monitoring_dashboard_spec.txt --max-iterations 5
  longhaul --name dashboard --extra-files AGENT_CONTEXT.md`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyConfigDefaults(cmd)
		return executeRun()
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&projectDir, "project-dir", "", "Directory for the project (relative paths are placed under generations/)")
	rootCmd.Flags().StringVar(&projectName, "name", "", "Project name (used when --project-dir is not set)")
	rootCmd.Flags().StringVar(&specFile, "spec", harness.CanonicalSpecName, "Spec file to use from the prompts directory")
	rootCmd.Flags().StringSliceVar(&extraFiles, "extra-files", nil, "Additional files to copy from the prompts directory")
	rootCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Maximum number of agent iterations (0 = unlimited)")
	rootCmd.Flags().StringVar(&model, "model", llm.DefaultModel, "Model to use")
	rootCmd.Flags().StringVar(&logFile, "log-file", "session.log", "Session log filename inside the project directory")
	rootCmd.Flags().StringVar(&promptsDir, "prompts-dir", "prompts", "Template library directory holding specs and extra files")
}

func executeRun() error {
	// Pre-flight: the credential check runs before any directory or
	// session work so a misconfigured environment fails fast and clean.
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: ANTHROPIC_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "\nSet it with:")
		fmt.Fprintln(os.Stderr, "  export ANTHROPIC_API_KEY='your-key-here'")
		os.Exit(1)
	}

	// 1. Resolve project identity.
	resolved := harness.ResolveProjectDir(projectDir, projectName, specFile)

	// 2. Provision the project directory (idempotent).
	provisioner := &harness.Provisioner{
		Library: harness.NewTemplateLibrary(promptsDir),
		Notices: os.Stdout,
	}
	if err := provisioner.Provision(resolved, specFile, extraFiles); err != nil {
		return err
	}

	// 3. Open the session log and install the console. Everything printed
	// from here on is teed into the project's log.
	sessionLog, err := harness.OpenSessionLog(resolved, logFile)
	if err != nil {
		return err
	}
	defer sessionLog.Close()
	console := harness.NewConsole(os.Stdout, os.Stderr, sessionLog)

	fmt.Fprintf(console.Out, "Project directory: %s\n", resolved)
	fmt.Fprintf(console.Out, "Model: %s\n", model)
	if maxIterations > 0 {
		fmt.Fprintf(console.Out, "Max iterations: %d\n", maxIterations)
	}

	// 4. Drive the session. SIGINT cancels the context; the driver turns
	// that into a resumable interruption rather than a failure.
	client := llm.NewClientFromEnv()
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := &harness.Driver{
		Runtime: agent.NewRuntime(client, console),
		Console: console,
	}
	_, err = driver.Run(ctx, harness.SessionRequest{
		ProjectDir:    resolved,
		Model:         model,
		MaxIterations: maxIterations,
		SpecFile:      specFile,
		ExtraFiles:    extraFiles,
	})
	return err
}
