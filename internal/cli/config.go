package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/codecontext/codecontext/internal/config"
	"github.com/codecontext/codecontext/internal/errs"
	"github.com/codecontext/codecontext/internal/metadata"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the global configuration file",
}

var configShowJSON bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the global config.toml with CodeContext's defaults",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the global config file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the global config file in $EDITOR",
	RunE:  runConfigEdit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	RunE:  runConfigValidate,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output as JSON instead of TOML")
	configPathCmd.Flags().BoolVar(&configPathData, "data", false, "show the data directory instead of the config path")
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd, configEditCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func globalConfigPath() (string, error) {
	dir, err := config.GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := globalConfigPath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return errs.New(errs.Configuration, fmt.Sprintf("config already exists: %s", path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.Configuration, "creating global config directory", err)
	}
	data, err := toml.Marshal(config.Default())
	if err != nil {
		return errs.Wrap(errs.Configuration, "encoding default config", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errs.Wrap(errs.Configuration, "writing global config", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if configShowJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errs.Wrap(errs.Configuration, "encoding config as JSON", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errs.Wrap(errs.Configuration, "encoding config as TOML", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

var configPathData bool

func runConfigPath(cmd *cobra.Command, args []string) error {
	if configPathData {
		dir, err := metadata.DataDir()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dir)
		return nil
	}
	path, err := globalConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path, err := globalConfigPath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return errs.New(errs.Configuration, fmt.Sprintf("config not found: %s (run: codecontext config init)", path))
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}
	c := exec.Command(editor, path)
	c.Stdin, c.Stdout, c.Stderr = cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()
	return c.Run()
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Invalid configuration: %v\n", err)
		return err
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Invalid configuration: %v\n", err)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
	return nil
}
