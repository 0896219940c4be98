// Package display provides terminal output formatting for findr: match
// result printers, content-search rendering, warnings, and the run summary.
//
// # Printers
//
// Use Printer for search results:
//
//	p := display.NewPrinter(os.Stdout, long, display.ColorEnabled(os.Stdout))
//	p.PrintResult(res)
//	p.PrintSummary(count, elapsed, warnings)
//
// # Warning Messages
//
// Display warnings with optional components; the commands use this to
// list paths a walk could not fully search:
//
//	warning := display.Warning{
//	    Title:      "2 path(s) could not be fully searched",
//	    Paths:      skipped,
//	    Suggestion: "Check permissions on the listed paths.",
//	}
//	warning.Display(os.Stderr)
//
// All functions accept io.Writer interfaces for testability. Colors are
// applied only when explicitly enabled, so piped output stays clean.
package display
