package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/curaious/taskdesk/internal/api"
	"github.com/curaious/taskdesk/internal/config"
	"github.com/curaious/taskdesk/internal/telemetry"
)

var apiServerCmd = &cobra.Command{
	Use:   "api-server",
	Short: "Start the REST API server",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()

		shutdownTelemetry := telemetry.NewProvider(conf.OTEL_SERVICE_NAME, conf.OTEL_EXPORTER_OTLP_ENDPOINT, filepath.Join(os.TempDir(), "taskdesk-api-traces.txt"))
		defer shutdownTelemetry()

		s, err := api.New(conf)
		if err != nil {
			log.Fatalln("Unable to start API server:", err)
		}
		s.Start()
	},
}

// Register the "api-server" command
func init() {
	rootCmd.AddCommand(apiServerCmd)
}
