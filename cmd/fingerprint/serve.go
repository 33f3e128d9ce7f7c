package main

import (
	"fmt"
	"net"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/slashdevops/fingerprint/transport"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the collection endpoint that acknowledges submitted records",
		Long: `serve answers POST /submit-fingerprint with an ack echoing the record's
fingerprintId and the server time. With --nats it also replies to records
requested on the NATS subject.`,
		Example: `  fingerprint serve --listen :8080
  fingerprint serve --listen 127.0.0.1:8080 --nats nats://127.0.0.1:4222`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.override(cmd.Flags())

			handler := transport.NewHandler().WithLogger(&a.logger)

			if a.cfg.Server.NATSURL != "" {
				nc, err := nats.Connect(a.cfg.Server.NATSURL, nats.Name(applicationName))
				if err != nil {
					return fmt.Errorf("failed to connect to NATS: %w", err)
				}
				defer nc.Close()

				responder, err := transport.NewNATSResponder(nc, a.cfg.Server.Subject, handler)
				if err != nil {
					return err
				}
				defer responder.Close()

				a.logger.Info().
					Str("url", a.cfg.Server.NATSURL).
					Str("subject", a.cfg.Server.Subject).
					Msg("answering NATS submissions")
			}

			l, err := net.Listen("tcp", a.cfg.Server.Listen)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", a.cfg.Server.Listen, err)
			}

			return transport.NewServer(a.cfg.Server.Listen, handler, &a.logger).Run(cmd.Context(), l)
		},
	}

	cmd.Flags().String("listen", "", "Address to listen on, e.g. :8080")
	cmd.Flags().String("nats", "", "NATS server URL to answer submissions on")
	cmd.Flags().String("subject", "", "NATS subject (default "+transport.DefaultSubject+")")

	return cmd
}
