// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/analyst-engine/internal/memory"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or clear the conversation memory",
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the three memory sections",
	RunE:  runMemoryShow,
}

func runMemoryShow(cmd *cobra.Command, args []string) error {
	cfg := assistantConfig()
	mem, err := memory.Open(cfg.Memory.Dir)
	if err != nil {
		return fmt.Errorf("opening memory store: %w", err)
	}

	history := mem.RecentHistory(0)
	fmt.Printf("Short-term (%d entries):\n", len(history))
	for _, e := range history {
		content := e.Content
		if len(content) > 80 {
			content = content[:77] + "..."
		}
		fmt.Printf("  [%s] %s\n", e.Role, content)
	}

	lt := mem.LongTerm()
	fmt.Println("\nLong-term:")
	fmt.Printf("  Research themes: %s\n", joinOrNone(lt.ResearchThemes))
	fmt.Printf("  Key entities:    %s\n", joinOrNone(lt.KeyEntities))
	fmt.Printf("  Expertise level: %s\n", lt.ExpertiseLevel)

	b := mem.Behavioral()
	fmt.Println("\nBehavioral:")
	fmt.Printf("  Interactions:    %d\n", b.InteractionCount)
	fmt.Printf("  Topics:          %s\n", joinOrNone(b.CommonTopics))
	fmt.Printf("  Preferred depth: %s\n", b.PreferredDepth)

	return nil
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the short-term conversation window",
	Long: `Clear empties the short-term conversation window. Long-term and
behavioral memory persist: accumulated preferences survive a new session.`,
	RunE: runMemoryClear,
}

func runMemoryClear(cmd *cobra.Command, args []string) error {
	cfg := assistantConfig()
	mem, err := memory.Open(cfg.Memory.Dir)
	if err != nil {
		return fmt.Errorf("opening memory store: %w", err)
	}
	if err := mem.ClearShortTerm(); err != nil {
		return err
	}
	fmt.Println("Short-term memory cleared.")
	return nil
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "(none)"
	}
	return strings.Join(list, ", ")
}

func init() {
	memoryCmd.AddCommand(memoryShowCmd)
	memoryCmd.AddCommand(memoryClearCmd)

	rootCmd.AddCommand(memoryCmd)
}
