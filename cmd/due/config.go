package main

import (
	"fmt"

	"due/internal/config"
	"due/internal/fsutil"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) configCmd() *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Prints where the config file is read from and the configuration in
effect after defaults are applied. With --init, writes that configuration
to config.yaml so it can be edited.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path()
			if path == "" {
				return fmt.Errorf("cannot determine the config directory")
			}

			if initFile {
				if fsutil.Exists(path) {
					return fmt.Errorf("%s already exists", path)
				}
				if err := c.cfg.Save(); err != nil {
					return fmt.Errorf("writing config: %w", err)
				}
				fmt.Fprintf(c.stdout, "✓ Wrote %s\n", path)
				return nil
			}

			data, err := yaml.Marshal(c.cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "# %s\n# data directory: %s\n%s", path, c.cfg.GetDataDir(), data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&initFile, "init", false, "Write the current configuration to the config file")
	return cmd
}
