package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "expertchat",
	Short: "ExpertChat - terminal client for the ExpertChat assistant",
	Long: `expertchat is the command-line client for the ExpertChat assistant.

It manages your session, your conversations, and the assistant's
knowledge base, and runs an interactive chat in the terminal.

Quick Start:
  expertchat login --email you@example.com
  expertchat chat

Examples:
  # Session
  expertchat signup --email you@example.com --name "You"
  expertchat whoami
  expertchat logout

  # Conversations
  expertchat conversations list
  expertchat conversations delete <id>

  # Knowledge base
  expertchat docs add-text "ExpertChat supports code blocks."
  expertchat docs upload ./notes.md`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(docsCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file path (default: per-user config dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}
