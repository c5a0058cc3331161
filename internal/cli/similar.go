package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	bookrec "github.com/kailas-cloud/bookrec/pkg/sdk"
)

// SimilarOptions holds options for the similar command.
type SimilarOptions struct {
	K int
}

// NewSimilarCommand creates the similar command.
func NewSimilarCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimilarOptions{}

	cmd := &cobra.Command{
		Use:   "similar [title]",
		Short: "Recommend books similar to one you enjoyed",
		Long: `Resolve a title and list the books whose summaries are closest to it.

When nothing matches, a single recommendation for a random book is shown.
Ambiguous queries list the candidate titles instead.`,
		Example: `  bookrec similar "sapiens" -k 5
  bookrec similar dune --seed 7 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimilar(cmd, rootOpts, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVarP(&opts.K, "k", "k", 3, "number of recommendations")

	return cmd
}

func runSimilar(cmd *cobra.Command, rootOpts *RootOptions, opts *SimilarOptions, query string) error {
	out := newFormatter(cmd, rootOpts)
	client, err := openClient(cmd, rootOpts)
	if err != nil {
		return out.Fail(err)
	}

	rec, err := client.Similar(cmd.Context(), query, opts.K)
	if err != nil {
		return out.Fail(err)
	}

	var seed *bookrec.Book
	if b, ok := client.Lookup(rec.Seed); ok && !rec.RandomFallback {
		seed = &b
	}
	return out.Success(rec, func(w io.Writer) {
		newTextRenderer(w).recommendation(&rec, seed)
	})
}
