package health

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"whisper-stt/internal/client"
)

var serverURL string
var timeout time.Duration

func init() {
	Cmd.Flags().StringVarP(&serverURL, "server", "s", client.DefaultBaseURL, "base URL of the stt server")
	Cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
}

// Cmd represents the health command
var Cmd = &cobra.Command{
	Use:   "health",
	Short: "Check that a server is online and print its model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		health, err := client.New(serverURL).Health(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (model: %s)\n", health.Status, health.Model)
		return nil
	},
}
