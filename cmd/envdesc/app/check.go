package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arloliu/envdesc"
	"github.com/arloliu/envdesc/watcher"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned by check when at least one descriptor is invalid.
var ErrCheckFailed = errors.New("descriptor check failed")

type checkOptions struct {
	*options
	watch    bool
	debounce time.Duration
}

func newCheckCommand(o *options) *cobra.Command {
	c := &checkOptions{options: o}

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate descriptor files",
		Long: `Load every descriptor file, apply environment overrides and defaults,
and validate the result. The exit status is non-zero if any file is invalid.

With --watch, a single file is re-validated each time it changes until the
command is interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.watch {
				if len(args) != 1 {
					return errors.New("--watch takes exactly one file")
				}

				return c.runWatch(cmd, args[0])
			}

			return c.run(cmd.OutOrStdout(), args)
		},
	}

	o.addLoadFlags(cmd)
	cmd.Flags().BoolVarP(&c.watch, "watch", "w", false, "re-validate the file whenever it changes")
	cmd.Flags().DurationVar(&c.debounce, "debounce", 100*time.Millisecond, "delay before re-validating after a change")

	return cmd
}

func (c *checkOptions) run(out io.Writer, files []string) error {
	failed := 0
	for _, file := range files {
		env, err := c.load(file)
		c.report(out, file, env, err)
		if err != nil {
			failed++
		}
	}

	if failed > 0 {
		c.log.WithField("failed", failed).Debug("check finished")
		return fmt.Errorf("%w: %d of %d invalid", ErrCheckFailed, failed, len(files))
	}

	return nil
}

func (c *checkOptions) runWatch(cmd *cobra.Command, file string) error {
	w, err := watcher.New().
		FromFile(file).
		Apply(c.apply).
		WithDebounceInterval(c.debounce).
		Build()
	if err != nil {
		return err
	}

	initial, results, err := w.Watch()
	if err != nil {
		return err
	}
	defer w.Stop()

	out := cmd.OutOrStdout()
	c.report(out, file, initial.Environment, initial.Err)
	c.log.WithField("file", w.Path()).Info("watching for changes")

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-results:
			if !ok {
				return nil
			}
			c.report(out, file, res.Environment, res.Err)
		}
	}
}

// report prints one line per descriptor followed by one line per invalid field.
func (c *checkOptions) report(out io.Writer, file string, env envdesc.Environment, err error) {
	if err == nil {
		kind := "development"
		if env.Production() {
			kind = "production"
		}
		_, _ = fmt.Fprintf(out, "%s %s %s\n", c.styles.ok.Render("ok"), file, c.styles.header.Render("("+kind+")"))

		return
	}

	_, _ = fmt.Fprintf(out, "%s %s\n", c.styles.fail.Render("FAIL"), file)
	for _, line := range errorLines(err) {
		_, _ = fmt.Fprintln(out, c.styles.detail.Render(line))
	}
}

// errorLines flattens a load error into one line per field problem.
func errorLines(err error) []string {
	var verr *envdesc.ValidationError
	if errors.As(err, &verr) {
		lines := make([]string, 0, len(verr.Errors))
		for _, e := range verr.Errors {
			lines = append(lines, e.Error())
		}

		return lines
	}

	return strings.Split(err.Error(), "\n")
}
