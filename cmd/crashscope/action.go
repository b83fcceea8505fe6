// Package main is the crashscope command. It reads crash reports out of
// modpack bug reports and comments on what it finds, either as a GitHub
// Actions step or as an HTTP service.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/crashscope/core/internal/gha"
	"github.com/crashscope/core/internal/triage"
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Analyze the issue form passed as action input",
	Long: `Reads the issue form from the formdata input (INPUT_FORMDATA), analyzes every crash report found in the
configured sections and writes the comment to the "comments" step output, or to stdout outside of Actions`,
	Args: cobra.NoArgs,
	RunE: runAction,
}

func init() {
	actionCmd.Flags().String("sections", "", "comma separated form sections to search (default from config)")
	actionCmd.Flags().String("pack-version-field", "", "form section holding the pack version")
	actionCmd.Flags().String("formdata-file", "", "read the form data from a file instead of the input (- for stdin)")
}

func readFormData(cmd *cobra.Command, input string) ([]byte, error) {
	path, err := cmd.Flags().GetString("formdata-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get formdata-file flag: %w", err)
	}
	switch path {
	case "":
		return []byte(input), nil
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	default:
		return os.ReadFile(path)
	}
}

func runAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg, true)
	if err != nil {
		return err
	}

	raw, err := readFormData(cmd, cfg.FormData)
	if err != nil {
		return err
	}
	form, err := triage.ParseFormData(raw)
	if err != nil {
		log.Error("Unable to parse formdata input", "error", err)
		return err
	}

	stdout := cmd.OutOrStdout()
	end := gha.Group(stdout, "Checking crash report")
	defer end()

	res := newRunner(cfg, log).Run(cmd.Context(), form, nil)
	sink := triage.Sink{OutputFile: cfg.OutputFile, Stdout: stdout}
	if err := sink.Deliver(res.Lines); err != nil {
		log.Error("could not deliver comment", "error", err)
		return err
	}
	return nil
}
