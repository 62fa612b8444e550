package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/screenwall/internal/config"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	var format string
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.loadConfig()
			if err != nil {
				return err
			}
			f := res.Format
			switch strings.ToLower(format) {
			case "":
			case "yaml":
				f = config.FormatYAML
			case "toml":
				f = config.FormatTOML
			default:
				return fmt.Errorf("unknown format %q (want yaml or toml)", format)
			}
			data, err := res.Config.Encode(f)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if res.File != "" {
				fmt.Fprintf(w, "# source: %s\n", res.File)
			} else {
				fmt.Fprintln(w, "# source: built-in defaults")
			}
			_, err = w.Write(data)
			return err
		},
	}
	printCmd.Flags().StringVar(&format, "format", "", "output format: yaml or toml (default: format of the config file)")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if res.File == "" {
				fmt.Fprintln(w, "no config file found; defaults are valid")
				return nil
			}
			fmt.Fprintf(w, "%s: ok\n", res.File)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(printCmd, validate, initCmd)
	return cmd
}
