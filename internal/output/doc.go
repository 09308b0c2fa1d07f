// Package output provides structured output and exit-code errors for the
// guidedocs CLI.
//
// Every command writes through a Printer, which renders either styled text
// for people or JSON for scripts and CI:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, colorMode.Enabled(output.IsTTY(cmd.OutOrStdout())))
//	printer.Success(map[string]any{"message": "generated 42 channels"})
//	printer.Table([]string{"URL", "KIND"}, rows)
//
// In JSON mode errors are written to stdout as {"error": "...", "code": N};
// in human mode they go to the stderr writer.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: bad arguments, missing input, invalid config
//	output.ExitSystemError // 2: I/O failures, unwritable output
//	output.ExitConflict    // 3: output exists and --force was not given
package output
