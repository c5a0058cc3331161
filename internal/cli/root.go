// Package cli implements the bookrec terminal client.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bookrec/internal/version"
	bookrec "github.com/kailas-cloud/bookrec/pkg/sdk"
)

// DefaultSnapshot is used when neither --snapshot nor BOOKREC_SNAPSHOT is set.
const DefaultSnapshot = "testdata/catalog.json"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Snapshot     string
	SnapshotType string // json, parquet, sqlite; empty = by extension
	Format       string // "json" | "text"
	Seed         uint64
	MaxK         int
	Verbose      bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the bookrec CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bookrec",
		Short: "bookrec - content-based non-fiction book recommender",
		Long: `Recommend non-fiction books from a catalog snapshot.

Books are compared by the cosine distance of their summary embeddings.
Use "similar" to find books like one you enjoyed, or "explore" to sample
well rated books of a topic.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	snapshot := os.Getenv("BOOKREC_SNAPSHOT")
	if snapshot == "" {
		snapshot = DefaultSnapshot
	}

	cmd.PersistentFlags().StringVarP(&opts.Snapshot, "snapshot", "s", snapshot, "catalog snapshot path")
	cmd.PersistentFlags().StringVar(&opts.SnapshotType, "snapshot-format", "",
		"snapshot format (json|parquet|sqlite), detected from the path by default")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().Uint64Var(&opts.Seed, "seed", 0, "random seed for reproducible picks")
	cmd.PersistentFlags().IntVar(&opts.MaxK, "max-k", 6, "largest number of books per answer")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewSimilarCommand(opts))
	cmd.AddCommand(NewExploreCommand(opts))
	cmd.AddCommand(NewTopicsCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))

	return cmd
}

// openClient loads the snapshot named by the global flags.
func openClient(cmd *cobra.Command, opts *RootOptions) (*bookrec.Client, error) {
	clientOpts := []bookrec.Option{
		bookrec.WithFormat(opts.SnapshotType),
		bookrec.WithMaxK(opts.MaxK),
	}
	if f := cmd.Flag("seed"); f != nil && f.Changed {
		clientOpts = append(clientOpts, bookrec.WithSeed(opts.Seed))
	}
	if opts.Verbose {
		clientOpts = append(clientOpts, bookrec.WithLogger(slog.New(
			slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}),
		)))
	}

	client, err := bookrec.Open(cmd.Context(), opts.Snapshot, clientOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}
	return client, nil
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
