package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [query]",
		Short: "Show which catalog titles a query matches",
		Long: `Match a query against catalog titles, ignoring case.

An exact title wins. Otherwise every title containing the query is listed,
up to a limit.`,
		Example: `  bookrec resolve dune
  bookrec resolve "The Hobbit" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, rootOpts)
			client, err := openClient(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}

			m := client.Resolve(strings.Join(args, " "))
			return out.Success(m, func(w io.Writer) {
				newTextRenderer(w).match(&m)
			})
		},
	}
}
