// Package ui renders the styled output of the bravia CLI.
//
// Commands print through a Printer: a header panel for state, a result
// box for the outcome of a change and a failure box for errors. Failure
// boxes for device errors carry the matching troubleshooting tips.
//
//	p := ui.NewPrinter(nil)
//	snap, err := ctl.Snapshot(ctx)
//	if err != nil {
//	    p.PrintError("Could not read state", err)
//	    return err
//	}
//	p.PrintSnapshot("Living room", snap)
//
// Logging stays silent unless BRAVIA_LOG_LEVEL is set, so zap output never
// interleaves with these boxes.
package ui
