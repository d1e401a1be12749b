// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the analyst-engine CLI.
// Implements: prd001-workflow, prd004-memory, prd005-corpus,
//             prd006-assistant (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/analyst-engine/internal/secrets"
	"github.com/pdiddy/analyst-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the analyst-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "analyst-engine",
	Short: "Question answering over a financial document corpus",
	Long: `analyst-engine answers natural-language questions about a company's
financial documents. Each question runs through a four-stage pipeline:
plan decomposes the question, research retrieves passages and extracts
financial metrics, validate cross-checks claims against the retrieved
evidence (and optionally the web), and summarize produces the final answer.

A tiered memory store carries conversation context across questions, and
completed runs are archived for later review with the sessions command.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./analyst-engine.yaml or ~/.config/analyst-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("analyst-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "analyst-engine"))
		}
	}

	viper.SetDefault("ai.model", "gpt-4-turbo-preview")
	viper.SetDefault("ai.temperature", 0.1)
	viper.SetDefault("ai.max_retries", 3)
	viper.SetDefault("workflow.company", "Honeywell")
	viper.SetDefault("workflow.run_timeout", "120s")
	viper.SetDefault("retrieval.db_path", "data/corpus.db")
	viper.SetDefault("retrieval.max_passages", 5)
	viper.SetDefault("memory.dir", "memory_store")
	viper.SetDefault("search.max_results", 3)
	viper.SetDefault("archive.db_path", "data/sessions.db")

	viper.SetEnvPrefix("ANALYST_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// assistantConfig assembles the full configuration from viper, with API
// keys falling back to the loaded secrets.
func assistantConfig() types.AssistantConfig {
	return types.AssistantConfig{
		AI: types.AIConfig{
			Model:       viper.GetString("ai.model"),
			APIKey:      secretDefault(secrets.KeyOpenAI, viper.GetString("ai.api_key")),
			Temperature: viper.GetFloat64("ai.temperature"),
			MaxRetries:  viper.GetInt("ai.max_retries"),
		},
		Workflow: types.WorkflowConfig{
			Company:    viper.GetString("workflow.company"),
			RunTimeout: viper.GetDuration("workflow.run_timeout"),
		},
		Retrieval: types.RetrievalConfig{
			DBPath:      viper.GetString("retrieval.db_path"),
			MaxPassages: viper.GetInt("retrieval.max_passages"),
		},
		Memory: types.MemoryConfig{
			Dir: viper.GetString("memory.dir"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "analyst-engine/" + version,
			},
			APIKey:     secretDefault(secrets.KeyTavily, viper.GetString("search.api_key")),
			MaxResults: viper.GetInt("search.max_results"),
		},
		Archive: types.ArchiveConfig{
			DBPath: viper.GetString("archive.db_path"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
