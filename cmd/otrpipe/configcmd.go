package main

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"otrpipe/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigShowCommand(ctx))
	cmd.AddCommand(newConfigInitCommand(ctx))
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// The password stays out of terminal output.
			redacted := *cfg
			if redacted.OTR.Password != "" {
				redacted.OTR.Password = "********"
			}
			if redacted.Cutlist.AccessToken != "" {
				redacted.Cutlist.AccessToken = "********"
			}
			out, err := toml.Marshal(redacted)
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *ctx.configFlag
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			cmd.Printf("Wrote sample configuration to %s\n", path)
			return nil
		},
	}
}
