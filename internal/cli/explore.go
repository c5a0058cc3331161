package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// ExploreOptions holds options for the explore command.
type ExploreOptions struct {
	Topic     string
	MinRating float64
	K         int
}

// NewExploreCommand creates the explore command.
func NewExploreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExploreOptions{}

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Sample well rated books of a topic",
		Example: `  bookrec explore --topic science --min-rating 4.2 -k 3
  bookrec explore --topic biography --seed 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd, rootOpts)
			client, err := openClient(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}

			ex, err := client.Explore(cmd.Context(), opts.Topic, opts.MinRating, opts.K)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(ex, func(w io.Writer) {
				newTextRenderer(w).exploration(&ex)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Topic, "topic", "t", "", "topic label (see \"bookrec topics\")")
	cmd.Flags().Float64Var(&opts.MinRating, "min-rating", 4.0, "lowest accepted rating (0-5)")
	cmd.Flags().IntVarP(&opts.K, "k", "k", 1, "number of books")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}
