// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-answering session",
	Long: `Chat starts an interactive session. Each line is run through the
pipeline with shared conversation memory, so follow-up questions can
refer back to earlier ones. Type exit, quit, or q to leave.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, cleanup, err := buildAssistant()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("analyst-engine chat. Type exit to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit", "q":
			return scanner.Err()
		}

		result, err := a.Process(context.Background(), line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printResult(os.Stdout, result)
		fmt.Println()
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
