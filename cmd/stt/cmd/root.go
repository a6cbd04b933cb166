package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"whisper-stt/cmd/stt/cmd/health"
	"whisper-stt/cmd/stt/cmd/serve"
	"whisper-stt/cmd/stt/cmd/transcribe"
	"whisper-stt/cmd/stt/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stt",
	Short: "A small speech-to-text service: upload audio, get a transcript back",
	Long: `A small speech-to-text service: upload audio, get a transcript back.
- stt serve starts the HTTP API with a model loaded once at startup
- stt transcribe sends a local audio file to a running server
- stt health checks that a server is online and which model it serves`,
	TraverseChildren: true,
	SilenceUsage:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(health.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
