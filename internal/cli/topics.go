package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// NewTopicsCommand creates the topics command.
func NewTopicsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List topics with their book counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd, rootOpts)
			client, err := openClient(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}

			topics := client.Topics()
			return out.Success(topics, func(w io.Writer) {
				newTextRenderer(w).topics(topics)
			})
		},
	}
}
