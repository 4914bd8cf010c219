package app

import (
	"fmt"

	"github.com/arloliu/envdesc"
	"github.com/spf13/cobra"
)

func newShowCommand(o *options) *cobra.Command {
	var (
		raw    bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the descriptor embedded in this build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, data := envdesc.Embedded()
			o.log.WithField("descriptor", name).Debug("showing embedded descriptor")

			out := cmd.OutOrStdout()
			if raw {
				_, err := out.Write(data)
				return err
			}

			if format == formatYAML {
				_, _ = fmt.Fprintln(out, o.styles.header.Render("# "+name))
			}

			return render(out, envdesc.Get(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", formatYAML, "output format: json, yaml or ts")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the embedded file as written")

	return cmd
}
