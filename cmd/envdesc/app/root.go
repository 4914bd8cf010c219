// Package app implements the envdesc command line tool used by the
// deployment pipeline to check and render environment descriptors.
package app

import (
	"io"

	"github.com/arloliu/envdesc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// options are the flags shared by every subcommand.
type options struct {
	verbose   bool
	noColor   bool
	envPrefix string
	dotenv    []string

	log    *logrus.Logger
	styles styles
}

// NewCommand creates the envdesc root command writing results to out and
// diagnostics to errOut.
func NewCommand(out, errOut io.Writer) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "envdesc",
		Short: "Check and render coffee-shop environment descriptors",
		Long: `envdesc validates the environment descriptors embedded into the
coffee-shop web client and renders them for the web build.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			o.log = newLogger(cmd.ErrOrStderr(), o.verbose)
			o.styles = newStyles(cmd.OutOrStdout(), o.noColor)
		},
	}

	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newCheckCommand(o),
		newRenderCommand(o),
		newShowCommand(o),
	)

	return cmd
}

// addLoadFlags registers the flags that control how a descriptor file is loaded.
func (o *options) addLoadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.envPrefix, "env-prefix", "", "prefix for environment variable overrides")
	cmd.Flags().StringSliceVar(&o.dotenv, "dotenv", nil, "dotenv file loaded before overrides (repeatable)")
}

// apply configures a descriptor builder from the load flags.
func (o *options) apply(b *envdesc.Builder) {
	if o.envPrefix != "" {
		b.WithEnvPrefix(o.envPrefix)
	}
	if len(o.dotenv) > 0 {
		b.WithDotEnvFiles(o.dotenv)
	}
}

// load reads, overrides and validates the descriptor at path.
func (o *options) load(path string) (envdesc.Environment, error) {
	o.log.WithFields(logrus.Fields{
		"file":       path,
		"env_prefix": o.envPrefix,
		"dotenv":     o.dotenv,
	}).Debug("loading descriptor")

	loader, err := envdesc.New().FromFile(path).Apply(o.apply).Build()
	if err != nil {
		return envdesc.Environment{}, err
	}

	return loader.Load()
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	return log
}
