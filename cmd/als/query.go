package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/quentinrf/ambient-light/pkg/alsrpc"
	"github.com/quentinrf/ambient-light/pkg/tlsconfig"
)

type queryOptions struct {
	server     string
	since      time.Duration
	timeout    time.Duration
	tls        tlsconfig.Files
	serverName string
}

// newQueryCmd asks a running `als --listen --grpc-addr` for its readings
func newQueryCmd() *cobra.Command {
	opts := queryOptions{server: "localhost:50051", timeout: 5 * time.Second}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Show readings recorded by a running als server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.server, "server", opts.server, "address of the als gRPC server")
	fs.DurationVar(&opts.since, "since", 0, "also print history for this long back (e.g. 1h)")
	fs.DurationVar(&opts.timeout, "timeout", opts.timeout, "per-call timeout")
	fs.StringVar(&opts.tls.Cert, "tls-cert", "", "client certificate (PEM)")
	fs.StringVar(&opts.tls.Key, "tls-key", "", "client private key (PEM)")
	fs.StringVar(&opts.tls.CA, "tls-ca", "", "CA certificate for server verification (PEM)")
	fs.StringVar(&opts.serverName, "tls-server-name", "", "expected server certificate name")
	return cmd
}

func runQuery(cmd *cobra.Command, opts queryOptions) error {
	creds := insecure.NewCredentials()
	if opts.tls.Enabled() {
		tlsCfg, err := tlsconfig.LoadClientTLS(opts.tls, opts.serverName)
		if err != nil {
			return fmt.Errorf("load TLS config: %w", err)
		}
		creds = credentials.NewTLS(tlsCfg)
	}

	conn, err := grpc.NewClient(opts.server, grpc.WithTransportCredentials(creds))
	if err != nil {
		return fmt.Errorf("dial %s: %w", opts.server, err)
	}
	defer conn.Close()
	client := alsrpc.NewClient(conn)

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	current, err := client.GetCurrentLight(ctx)
	if err != nil {
		return fmt.Errorf("get current light: %w", err)
	}
	out := cmd.OutOrStdout()
	printReading(out, current)

	if opts.since <= 0 {
		return nil
	}

	end := time.Now().Add(time.Second)
	history, err := client.GetHistory(ctx, end.Add(-opts.since), end)
	if err != nil {
		return fmt.Errorf("get history: %w", err)
	}
	for _, r := range history.Readings {
		printReading(out, r)
	}
	fmt.Fprintf(out, "%d readings, avg %.1f min %.1f max %.1f lux\n",
		len(history.Readings), history.AverageLux, history.MinLux, history.MaxLux)
	return nil
}

func printReading(w io.Writer, r alsrpc.Reading) {
	fmt.Fprintf(w, "%s  %.1f lux (avg: %.1f)  %s\n",
		r.Timestamp.Local().Format(time.DateTime), r.Lux, r.Average, r.Category)
}
