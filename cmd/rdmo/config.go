package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  rdmo config                                   # Show effective settings
  rdmo config source                            # Get specific value
  rdmo config source postgres                   # Set value
  rdmo config allow-origins http://a,http://b   # Comma-separated list

Keys:
  source           Record source: sqlite, postgres, jsonl or api
  api-url          Record API base URL
  database-url     PostgreSQL connection string
  manuscript-root  Folder holding full manuscripts
  listen-addr      Address for rdmo serve
  allow-origins    CORS origins for rdmo serve

Secrets such as the API key belong in ~/.config/rdmo/config.yml or .env and
are never printed.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// configKeys maps normalized keys to accessors on the repository config.
var configKeys = map[string]struct {
	get func(*config.Config) string
	set func(*config.Config, string) error
}{
	"source": {
		get: func(c *config.Config) string { return c.Source },
		set: func(c *config.Config, v string) error {
			if err := config.ValidateSource(v); err != nil {
				return err
			}
			c.Source = v
			return nil
		},
	},
	"api-url": {
		get: func(c *config.Config) string { return c.APIURL },
		set: func(c *config.Config, v string) error { c.APIURL = v; return nil },
	},
	"database-url": {
		get: func(c *config.Config) string { return c.DatabaseURL },
		set: func(c *config.Config, v string) error { c.DatabaseURL = v; return nil },
	},
	"manuscript-root": {
		get: func(c *config.Config) string { return c.ManuscriptRoot },
		set: func(c *config.Config, v string) error {
			if err := config.ValidateManuscriptRoot(v); err != nil {
				return err
			}
			c.ManuscriptRoot = v
			return nil
		},
	},
	"listen-addr": {
		get: func(c *config.Config) string { return c.ListenAddr },
		set: func(c *config.Config, v string) error { c.ListenAddr = v; return nil },
	},
	"allow-origins": {
		get: func(c *config.Config) string { return strings.Join(c.AllowOrigins, ",") },
		set: func(c *config.Config, v string) error {
			c.AllowOrigins = nil
			for _, o := range strings.Split(v, ",") {
				if o = strings.TrimSpace(o); o != "" {
					c.AllowOrigins = append(c.AllowOrigins, o)
				}
			}
			return nil
		},
	},
}

func runConfig(cmd *cobra.Command, args []string) error {
	r := mustOpenRepository()
	defer r.Log.Sync()

	// No args: show the effective settings.
	if len(args) == 0 {
		if humanOutput {
			s := r.Settings
			fmt.Printf("root:            %s\n", s.Root)
			fmt.Printf("source:          %s\n", s.Source)
			fmt.Printf("api-url:         %s\n", s.APIURL)
			fmt.Printf("database-url:    %s\n", redactedSet(s.DatabaseURL))
			fmt.Printf("manuscript-root: %s\n", s.ManuscriptRoot)
			fmt.Printf("listen-addr:     %s\n", s.ListenAddr)
			fmt.Printf("allow-origins:   %s\n", strings.Join(s.AllowOrigins, ","))
			fmt.Printf("log-mode:        %s\n", s.LogMode)
		} else {
			outputJSON(r.Settings)
		}
		return nil
	}

	key := normalizeKey(args[0])
	accessor, ok := configKeys[key]
	if !ok {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	cfg, err := config.Load(r.Root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// One arg: get the value stored in the repository config.
	if len(args) == 1 {
		value := accessor.get(cfg)
		if key == "database-url" {
			value = redactedSet(value)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	value := args[1]
	if err := accessor.set(cfg, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(r.Root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if key == "database-url" {
		value = redactedSet(value)
	}
	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}
	return nil
}

// normalizeKey converts key formats (api-url, api_url, API_URL) to api-url.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "_", "-")
}

func redactedSet(s string) string {
	if s == "" {
		return ""
	}
	return "(set)"
}
