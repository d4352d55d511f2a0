// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "suretysim",
		Short: "Runs the flight surety ledger against a set of simulated oracles",
		RunE:  runFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	logger, err := newLogger(config.Verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	report, err := NewSimulator(config, logger).Run(c.Context())
	if err != nil {
		return err
	}
	logger.Info("simulation finished",
		zap.Stringer("flightKey", report.FlightKey),
		zap.Stringer("status", report.Status),
		zap.Int("requests", report.Requests),
		zap.Uint64("paid", report.Paid),
		zap.Uint64("treasury", report.Treasury),
	)
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.NewProductionConfig()
	config.EncoderConfig = encoderConfig
	config.Encoding = "console"
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return config.Build()
}
