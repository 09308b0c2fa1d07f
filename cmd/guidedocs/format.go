package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorewood/guidedocs/internal/message"
	"github.com/gorewood/guidedocs/internal/output"
)

// newFormatCmd creates the format command.
func newFormatCmd(d deps) *cobra.Command {
	var outFlag string
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "format FILE",
		Short: "Format one channel export",
		Long: `Format a single channel export and print the Markdown.

Use - as FILE to read from stdin.

Examples:
  guidedocs format high-tier-pvm/telos.txt
  guidedocs format telos.txt --out docs/telos.md
  cat telos.txt | guidedocs format -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, d, args[0], outFlag, forceFlag)
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the Markdown to this file instead of stdout")
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Overwrite --out if it exists")

	return cmd
}

func runFormat(cmd *cobra.Command, d deps, path, outFlag string, force bool) error {
	a, err := newApp(cmd, d)
	if err != nil {
		return err
	}
	defer a.close()

	raw, err := readChannel(cmd, path)
	if err != nil {
		a.printer.Error(err)
		return err
	}

	if outFlag != "" && !force {
		if _, statErr := os.Stat(outFlag); statErr == nil {
			err := output.NewConflictError(outFlag + " already exists (use --force to overwrite)")
			a.printer.Error(err)
			return err
		}
	}

	markdown, err := a.pipeline.FormatChannel(cmd.Context(), raw)
	if err != nil {
		err = output.NewSystemErrorWithCause("failed to format "+path, err)
		a.printer.Error(err)
		return err
	}

	if outFlag != "" {
		if err := os.WriteFile(outFlag, []byte(markdown), 0o644); err != nil {
			err = output.NewSystemErrorWithCause("failed to write "+outFlag, err)
			a.printer.Error(err)
			return err
		}
	}

	switch {
	case a.printer.IsJSON():
		result := map[string]any{"messages": len(message.Split(raw))}
		if outFlag != "" {
			result["path"] = outFlag
		} else {
			result["markdown"] = markdown
		}
		return a.printer.Success(result)
	case outFlag != "":
		return a.printer.Success(map[string]any{"message": "Wrote " + outFlag})
	default:
		a.printer.Print("%s", markdown)
		return nil
	}
}

// readChannel reads path, or stdin when path is "-".
func readChannel(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", output.NewSystemErrorWithCause("failed to read stdin", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", output.UserErrorf("channel file %s does not exist", path)
		}
		return "", output.NewSystemErrorWithCause("failed to read "+path, err)
	}
	return string(data), nil
}
