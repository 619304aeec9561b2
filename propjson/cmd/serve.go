package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/sarchlab/propjson/catalog"
	"github.com/sarchlab/propjson/monitoring"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP inspector.",
		Long: "`serve --port 8080` serves the inspector API until " +
			"interrupted. A port of 0 picks a random free port.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := catalog.NewRegistry()
			if err != nil {
				return err
			}

			inspector := monitoring.NewInspector(registry, logger).
				WithPortNumber(intSetting(cmd, "port", envPort))

			url, err := inspector.StartServer()
			if err != nil {
				return err
			}

			cmd.Printf("Inspector is running at %s\n", url)

			if open, _ := cmd.Flags().GetBool("open"); open {
				if err := browser.OpenURL(url + "/api/types"); err != nil {
					logger.Warn("cannot open browser", zap.Error(err))
				}
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			return nil
		},
	}

	serve.Flags().Int("port", 0, "Port to listen on, env "+envPort)
	serve.Flags().Bool("open", false, "Open the inspector in a browser")

	return serve
}
