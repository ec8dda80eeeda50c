package cli

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settingCheckers lists the keys `config set` accepts. auth.token is written
// only by the auth commands, which validate it.
var settingCheckers = map[string]func(string) error{
	"server_url": func(v string) error {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server_url must be an http(s) URL, got %q", v)
		}
		return nil
	},
	"output": func(v string) error {
		switch v {
		case "table", "json", "yaml":
			return nil
		}
		return fmt.Errorf("output must be table, json or yaml, got %q", v)
	},
	"timeout": func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("timeout must be a positive duration such as 90s, got %q", v)
		}
		return nil
	},
}

func validateSetting(key, value string) error {
	check, ok := settingCheckers[key]
	if !ok {
		keys := make([]string, 0, len(settingCheckers))
		for k := range settingCheckers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown key %q (valid: %s)", key, strings.Join(keys, ", "))
	}
	return check(value)
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigSetCmd(), newConfigGetCmd(), newConfigListCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive first-time setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(os.Stdin)
			for _, q := range []struct{ key, prompt string }{
				{"server_url", "Panel API URL"},
				{"output", "Default output format (table/json/yaml)"},
				{"timeout", "Request timeout (sync runs can be slow)"},
			} {
				current := viper.GetString(q.key)
				fmt.Printf("%s [%s]: ", q.prompt, current)
				answer, _ := in.ReadString('\n')
				answer = strings.TrimSpace(answer)
				if answer == "" {
					answer = current
				}
				if err := validateSetting(q.key, answer); err != nil {
					return err
				}
				viper.Set(q.key, answer)
			}

			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Println("Configuration saved")
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set server_url, output or timeout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSetting(args[0], args[1]); err != nil {
				return err
			}
			viper.Set(args[0], args[1])
			if err := writeConfig(); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !viper.IsSet(args[0]) {
				fmt.Printf("%s: (not set)\n", args[0])
				return nil
			}
			fmt.Printf("%s: %s\n", args[0], displaySetting(args[0], viper.GetString(args[0])))
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := viper.AllKeys()
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Printf("%s: %s\n", key, displaySetting(key, viper.GetString(key)))
			}
			return nil
		},
	}
}

// displaySetting keeps stored tokens off the terminal.
func displaySetting(key, value string) string {
	if key == "auth.token" && value != "" {
		return "(stored)"
	}
	return value
}

// writeConfig persists viper's settings to --config or ~/.smmpanel/config.yaml.
func writeConfig() error {
	if cfgFile != "" {
		return viper.WriteConfigAs(cfgFile)
	}
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}
