package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bookrec/internal/repository/catalog"
	"github.com/kailas-cloud/bookrec/internal/snapshot"
	bookrec "github.com/kailas-cloud/bookrec/pkg/sdk"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	To string
}

// ConvertResult is the JSON payload of the convert command.
type ConvertResult struct {
	Source      string `json:"source"`
	Output      string `json:"output"`
	Format      string `json:"format"`
	Books       int    `json:"books"`
	Dimensions  int    `json:"dimensions"`
	Fingerprint string `json:"fingerprint"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <output>",
		Short: "Validate a snapshot and write it in another format",
		Long: `Load the snapshot with every catalog check applied, then write it out.

Parquet output is a directory holding books.parquet and embeddings.parquet.
JSON and SQLite output are single files.`,
		Example: `  bookrec convert --to parquet ./catalog
  bookrec -s ./catalog convert --to sqlite catalog.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", string(snapshot.FormatJSON), "output format (json|parquet|sqlite)")

	return cmd
}

func runConvert(cmd *cobra.Command, rootOpts *RootOptions, opts *ConvertOptions, output string) error {
	out := newFormatter(cmd, rootOpts)

	to := snapshot.Format(opts.To)
	if !to.IsValid() || to == snapshot.FormatAuto {
		return out.Fail(fmt.Errorf("unknown output format %q: %w", opts.To, bookrec.ErrInvalidArgument))
	}
	from := snapshot.Format(rootOpts.SnapshotType)
	if !from.IsValid() {
		return out.Fail(fmt.Errorf("unknown snapshot format %q: %w", rootOpts.SnapshotType, bookrec.ErrInvalidArgument))
	}

	store, err := catalog.Load(rootOpts.Snapshot, catalog.WithFormat(from))
	if err != nil {
		return out.Fail(err)
	}

	books := store.All()
	idx := store.Embeddings()
	rows := make([]snapshot.BookRow, len(books))
	embeddings := make([]snapshot.EmbeddingRow, len(books))
	for i := range books {
		rows[i] = catalog.BookToRow(&books[i])
		embeddings[i] = snapshot.EmbeddingRow{Title: books[i].Key(), Vector: idx.Vector(i)}
	}

	switch to {
	case snapshot.FormatParquet:
		err = snapshot.WriteParquet(output, rows, embeddings)
	case snapshot.FormatSQLite:
		err = snapshot.WriteSQLite(output, rows, embeddings)
	default:
		err = snapshot.WriteJSON(output, rows, embeddings)
	}
	if err != nil {
		return out.Fail(fmt.Errorf("write %s snapshot: %w", to, err))
	}

	res := ConvertResult{
		Source:      store.Source(),
		Output:      output,
		Format:      string(to),
		Books:       store.Len(),
		Dimensions:  idx.Dimensions(),
		Fingerprint: store.Fingerprint(),
	}
	return out.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "Wrote %d books (%d-d embeddings) to %s as %s\n",
			res.Books, res.Dimensions, res.Output, res.Format)
	})
}
