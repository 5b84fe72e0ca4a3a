package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"aquacheck/adapters/model"

	"github.com/spf13/cobra"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect, convert and generate classifier artifacts",
	}
	cmd.AddCommand(newModelInspectCmd(), newModelConvertCmd(), newModelDemoCmd())
	return cmd
}

func newModelInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [artifact]",
		Short: "Load an artifact and print its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := model.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(handle.Info())
		},
	}
}

func newModelConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [in] [out]",
		Short: "Re-encode an artifact; the output encoding follows the output extension",
		Long: `Re-encode an artifact between JSON and MessagePack.

Example: aquacheck model convert forest.json forest.msgpack`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", in, err)
			}

			artifact, err := model.Decode(data, model.EncodingFor(in, data))
			if err != nil {
				return err
			}
			if err := artifact.Check(); err != nil {
				return err
			}

			if err := writeArtifact(out, artifact); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
}

func newModelDemoCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write the built-in demonstration forest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeArtifact(out, model.DemoArtifact()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "models/demo_forest.json", "Output path (.json or .msgpack)")
	return cmd
}

func writeArtifact(path string, artifact *model.Artifact) error {
	data, err := model.Encode(artifact, model.EncodingFor(path, nil))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
