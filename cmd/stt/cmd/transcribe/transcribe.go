package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"whisper-stt/internal/client"
)

var serverURL string
var timeout time.Duration
var noProgress bool

func init() {
	Cmd.Flags().StringVarP(&serverURL, "server", "s", client.DefaultBaseURL, "base URL of the stt server")
	Cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall request timeout")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the upload progress bar")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Send an audio file to a running server and print the transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return err
		}

		name := filepath.Base(path)
		progress := client.NewUploadProgress(client.ProgressConfig{
			Enabled: !noProgress && client.ShouldShowProgress(false),
			Writer:  cmd.ErrOrStderr(),
		}, name, info.Size())

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := client.New(serverURL, client.WithTimeout(timeout)).
			Transcribe(ctx, name, progress.Reader(file))
		progress.Finish(err)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), resp.Transcript)
		return nil
	},
}
