package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"convs"},
	Short:   "Conversation management commands",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your conversations",
	RunE:  runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsDelete,
}

func init() {
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)

	conversationsDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		return fmt.Errorf("not signed in")
	}
	printSummaries(a.convs.LoadSummaries(cmd.Context()), "")
	return nil
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		return fmt.Errorf("not signed in")
	}
	if err := a.convs.Select(cmd.Context(), args[0]); err != nil {
		return friendly(err)
	}
	for _, msg := range a.convs.Messages() {
		renderMessage(msg)
	}
	return nil
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		return fmt.Errorf("not signed in")
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !confirmPrompt(fmt.Sprintf("Delete conversation %s? [y/N] ", args[0])) {
			fmt.Println("Aborted.")
			return nil
		}
	}
	if err := a.convs.Delete(cmd.Context(), args[0], nil); err != nil {
		return friendly(err)
	}
	fmt.Println("Deleted.")
	return nil
}
