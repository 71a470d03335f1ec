package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/rendercache/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a cache configuration file (JSON/YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := config.Validate(*cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✓ Config is valid")
			fmt.Fprintf(out, "  Private:  max_size=%d ttl=%s metrics=%v\n",
				cfg.Private.MaxSize, cfg.Private.TTL, cfg.Private.EnableMetrics)
			fmt.Fprintf(out, "  Shared:   max_size=%d ttl=%s\n", cfg.Shared.MaxSize, cfg.Shared.TTL)
			fmt.Fprintf(out, "  Warm:     concurrency=%d\n", cfg.Warm.Concurrency)
			return nil
		},
	}
}
