package main

import (
	"fmt"
	"os"

	"aquacheck/adapters/model"
	"aquacheck/app"
	"aquacheck/domain/water"
	"aquacheck/internal"
	"aquacheck/internal/interpret"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are the flags shared by every command that scores samples
type options struct {
	modelPath string
	policy    string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "aquacheck",
		Short:         "Water potability classification from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.modelPath, "model", os.Getenv("MODEL_PATH"), "Path to the classifier artifact (.json or .msgpack)")
	rootCmd.PersistentFlags().StringVar(&opts.policy, "policy", envOr("INPUT_POLICY", string(water.PolicyClamp)), "Out-of-range input policy: clamp or reject")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "WARN"), "Log level: ERROR, WARN, INFO or DEBUG")

	rootCmd.AddCommand(
		newPredictCmd(opts),
		newBatchCmd(opts),
		newSchemaCmd(),
		newModelCmd(),
	)
	return rootCmd
}

// analysisService loads the model and wires the analysis service.
func (o *options) analysisService() (*app.AnalysisService, *internal.Logger, error) {
	if o.modelPath == "" {
		return nil, nil, fmt.Errorf("no model given: use --model or set MODEL_PATH")
	}
	policy, err := water.ParseInputPolicy(o.policy)
	if err != nil {
		return nil, nil, err
	}

	logger := internal.NewLogger(internal.ParseLogLevel(o.logLevel))
	handle, err := model.Load(o.modelPath)
	if err != nil {
		return nil, nil, err
	}
	return app.NewAnalysisService(water.NewSchema(policy), handle, interpret.NewEngine(), logger), logger, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
