package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/haiminh-dev/visadossier/internal/bootstrap"
	"github.com/haiminh-dev/visadossier/internal/config"
	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

var (
	flagInputDir string
	flagOutput   string
	flagCacheDir string
	flagModel    string
	flagForce    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "visadoc",
		Short:         "Build a visa support dossier from a folder of documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&flagInputDir, "input-dir", "", "folder with source documents")
	root.PersistentFlags().StringVar(&flagOutput, "output", "", "path for the generated support letter")
	root.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "pipeline cache directory")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "model name override")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and write the support letter",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			state, err := app.Pipeline.RunAll(cmd.Context(), flagForce)
			if err != nil {
				return err
			}
			fmt.Printf("processed %d file(s)\n", len(state.Files))
			fmt.Printf("support letter written to %s\n", app.Config.OutputPath)
			return nil
		},
	}
	runCmd.Flags().BoolVar(&flagForce, "force", false, "rerun every step even when cached")

	stepsCmd := &cobra.Command{
		Use:   "steps",
		Short: "Show which pipeline steps have completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			status, err := app.Pipeline.StepStatus(cmd.Context())
			if err != nil {
				return err
			}
			for _, step := range domain.Steps() {
				mark := " "
				if status[step] {
					mark = "x"
				}
				fmt.Printf("[%s] %s\n", mark, step)
			}
			return nil
		},
	}

	addFileCmd := &cobra.Command{
		Use:   "add-file <path>",
		Short: "Absorb one new document without rerunning completed files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			state, err := app.Pipeline.AddFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("absorbed %s, %d file(s) tracked\n", args[0], len(state.Files))
			return nil
		},
	}

	root.AddCommand(runCmd, stepsCmd, addFileCmd)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "visadoc: %v\n", err)
		os.Exit(1)
	}
}

// newApp loads the env config and applies flag overrides. The CLI always
// runs against the filesystem cache and never touches the job queue.
func newApp(ctx context.Context) (*bootstrap.App, error) {
	cfg := config.Load()
	cfg.NATSEnabled = false
	cfg.CacheBackend = "fs"
	if flagInputDir != "" {
		cfg.InputDir = flagInputDir
	}
	if flagOutput != "" {
		cfg.OutputPath = flagOutput
	}
	if flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}
	if flagModel != "" {
		cfg.LLMModel = flagModel
	}
	return bootstrap.New(ctx, cfg, "visadoc")
}
