package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
	"github.com/muurk/bravia/internal/ui"
)

// shellCmd opens an interactive prompt on one connection
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive prompt on one display",
	Long: `Open one connection to a display and type commands at a prompt.

Every verb of the command line works here without the "bravia" prefix
and without reconnecting. Notifications from the display are printed as
they arrive.`,
	Example: `  bravia shell --device lounge`,
	Args:    cobra.NoArgs,
	RunE:    runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// syncWriter serializes writes from the prompt loop and the notification
// observer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// shell runs verbs typed at a prompt.
type shell struct {
	sess    *session
	out     io.Writer
	timeout time.Duration

	unsubscribe []func()
}

func newShell(sess *session, out io.Writer) *shell {
	sh := &shell{sess: sess, out: &syncWriter{w: out}, timeout: commandTimeout}
	sh.unsubscribe = append(sh.unsubscribe,
		sess.dev.OnNotify(func(n protocol.Notification) {
			fmt.Fprintf(sh.out, "« %s\n", ui.DescribeNotification(n))
		}),
		sess.dev.OnClose(func(ev device.CloseEvent) {
			if !ev.Intentional {
				fmt.Fprintln(sh.out, ui.ErrorMessageStyle.Render(ui.FailureMarker+" connection lost, type reconnect"))
			}
		}),
	)
	return sh
}

func (sh *shell) close() {
	for _, u := range sh.unsubscribe {
		u()
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	sess, err := openSession(ctx)
	cancel()
	if err != nil {
		return err
	}
	defer sess.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          sess.label() + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	sh := newShell(sess, rl.Stdout())
	defer sh.close()
	sh.printHelp()

	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}
		if sh.execute(line) {
			return nil
		}
	}
}

// execute runs one input line and reports whether the shell should exit.
func (sh *shell) execute(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		sh.printHelp()
		return false
	case "reconnect":
		sh.reconnect()
		return false
	}

	v := lookupVerb(cmd)
	if v == nil {
		fmt.Fprintf(sh.out, "Unknown command: %s (type help)\n", cmd)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), sh.timeout)
	defer cancel()
	o, err := v.Run(ctx, sh.sess.ctl, args)
	if err != nil {
		fmt.Fprintln(sh.out, ui.ErrorMessageStyle.Render(ui.FailureMarker+" "+device.GetShortErrorMessage(err)))
		return false
	}
	sh.print(o)
	return false
}

// print writes an outcome as one line per field; snapshots get the panel.
func (sh *shell) print(o *outcome) {
	if o.Snapshot != nil {
		_ = render(sh.out, formatDetailed, o)
		return
	}
	for _, d := range details(o.Fields) {
		fmt.Fprintf(sh.out, "  %s: %s\n", d.Key, d.Value)
	}
}

func (sh *shell) reconnect() {
	if sh.sess.dev.State() == device.Connected {
		fmt.Fprintln(sh.out, "Already connected")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sh.timeout)
	defer cancel()
	if err := sh.sess.dev.Connect(ctx); err != nil {
		fmt.Fprintln(sh.out, ui.ErrorMessageStyle.Render(ui.FailureMarker+" "+device.GetShortErrorMessage(err)))
		return
	}
	fmt.Fprintf(sh.out, "%s Connected to %s\n", ui.SuccessMarker, sh.sess.target.Address)
}

func (sh *shell) printHelp() {
	fmt.Fprintln(sh.out, "Commands:")
	for _, v := range verbs {
		fmt.Fprintf(sh.out, "  %-34s %s\n", v.usage, v.short)
	}
	fmt.Fprintf(sh.out, "  %-34s %s\n", "reconnect", "Connect again after the display closed the connection")
	fmt.Fprintf(sh.out, "  %-34s %s\n", "help", "Show this help")
	fmt.Fprintf(sh.out, "  %-34s %s\n", "quit", "Leave the shell")
}
