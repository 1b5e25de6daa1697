package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/alchemytree/internal/config"
)

// configCommand creates the config command for inspecting the config file.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printConfig(c.Config)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				printWarning("%s already exists (use --force to overwrite)", path)
				return nil
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Default().Write(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Wrote default config")
			printFile(path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.Path()
}

func printConfig(cfg *config.Config) {
	catalog := cfg.Catalog
	if catalog == "" {
		catalog = "(built-in)"
	}
	printKeyValue("catalog", catalog)
	printKeyValue("horizontal_spacing", strconv.FormatFloat(cfg.Layout.HorizontalSpacing, 'g', -1, 64))
	printKeyValue("vertical_spacing", strconv.FormatFloat(cfg.Layout.VerticalSpacing, 'g', -1, 64))
	printKeyValue("parent_edges", strconv.FormatBool(cfg.Layout.ParentEdges))
	printKeyValue("delay", cfg.Reveal.Delay.String())
	printKeyValue("min_delay", cfg.Reveal.MinDelay.String())
	printKeyValue("cache.backend", cfg.Cache.Backend)
	if cfg.Cache.Dir != "" {
		printKeyValue("cache.dir", cfg.Cache.Dir)
	}
	if cfg.Cache.RedisURL != "" {
		printKeyValue("cache.redis_url", cfg.Cache.RedisURL)
	}
	printKeyValue("cache.ttl", cfg.Cache.TTL.String())
	printKeyValue("server.addr", cfg.Server.Addr)
}
