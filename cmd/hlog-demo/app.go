// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"krishnaiyer.tech/golang/hlog/config"
	"krishnaiyer.tech/golang/hlog/logger"
	"krishnaiyer.tech/golang/hlog/metrics"
)

const envPrefix = "HLOG"

// execute runs the command with args and reports any error on stderr.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	diag := slog.New(slog.NewTextHandler(stderr, nil))
	cmd, err := newRootCmd(stdout, stderr)
	if err != nil {
		diag.Error("could not create command", "err", err)
		return err
	}
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		diag.Error("hlog-demo failed", "err", err)
		return err
	}
	return nil
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, error) {
	cfg := config.Default()
	manager, err := config.New(&cfg, config.WithEnvPrefix(envPrefix))
	if err != nil {
		return nil, fmt.Errorf("could not generate flags: %w", err)
	}

	cmd := &cobra.Command{
		Use:           "hlog-demo",
		Short:         "Log a message through the configured handlers",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := manager.ParseConfiguration(cmd); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().AddFlagSet(manager.FlagSet())
	return cmd, nil
}

// run logs the configured message through the package level logger and resets it.
func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) (err error) {
	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
		m, err := metrics.New(reg)
		if err != nil {
			return err
		}
		logger.Default().SetMetrics(m)
		defer logger.Default().SetMetrics(nil)
	}

	l, err := cfg.Apply(logger.Default(), stderr)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, logger.Default().Shutdown(ctx))
	}()

	if cfg.Callback {
		if _, err := logger.AddCallbackHandler(func(msg string) {
			fmt.Fprintf(stdout, "Received in callback: %s\n", msg)
		}); err != nil {
			return err
		}
	}

	l.Info("%s", cfg.Message)
	if err := logger.Default().Err(); err != nil {
		return err
	}

	if reg != nil {
		return writeMetrics(stderr, reg)
	}
	return nil
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("could not gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("could not encode metrics: %w", err)
		}
	}
	return nil
}
