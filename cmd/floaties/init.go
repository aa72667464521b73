package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/floaties-dev/floaties/internal/config"
	"github.com/floaties-dev/floaties/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default floaties.json",
		Long: `Write floaties.json with every default spelled out.

Examples:
  floaties init
  floaties init ./deploy --force`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if config.Exists(dir) && !force {
				return errors.New("F303").
					WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists").
					WithSuggestion("Pass --force to overwrite it")
			}

			path := filepath.Join(dir, config.ConfigFileName)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

// maxArgs is cobra.MaximumNArgs with a coded error.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return errors.New("F301").
				WithDetail(cmd.UseLine()).
				WithSuggestion("Run '" + cmd.CommandPath() + " --help' for usage")
		}
		return nil
	}
}

// exactArgs is cobra.ExactArgs with a coded error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New("F301").
				WithDetail(cmd.UseLine()).
				WithSuggestion("Run '" + cmd.CommandPath() + " --help' for usage")
		}
		return nil
	}
}
