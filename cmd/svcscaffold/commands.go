package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/svcscaffold/app"
	"github.com/jonwraymond/svcscaffold/config"
	"github.com/jonwraymond/svcscaffold/health"
)

var errUnhealthy = errors.New("view is unhealthy")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "svcscaffold",
		Short:         "Web service with liveness, readiness and monitor health views",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newConsumeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
}

func newConsumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Consume the test topic until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			return a.Consume(ctx)
		},
	}
}

func newCheckCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:       "check <liveness|readiness|monitor>",
		Short:     "Run one health view once and print its result",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(health.ViewLiveness), string(health.ViewReadiness), string(health.ViewMonitor)},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			view, err := health.ParseView(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close(ctx)) }()

			result, err := a.Commander.Run(ctx, view)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			if result.Status != health.StatusHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}
