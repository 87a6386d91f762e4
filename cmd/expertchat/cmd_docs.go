package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Knowledge base commands",
	Long:  `Add documents to the assistant's knowledge base so it can answer from them.`,
}

var docsAddTextCmd = &cobra.Command{
	Use:   "add-text <text>",
	Short: "Ingest a text snippet",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsAddText,
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsUpload,
}

func init() {
	docsCmd.AddCommand(docsAddTextCmd)
	docsCmd.AddCommand(docsUploadCmd)

	docsAddTextCmd.Flags().String("source", "", "Source label for the snippet")
}

func runDocsAddText(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		return fmt.Errorf("not signed in")
	}

	source, _ := cmd.Flags().GetString("source")
	result, err := a.docs.AddText(cmd.Context(), a.sessions.AccessToken(), args[0], source)
	if err != nil {
		return friendly(err)
	}
	fmt.Printf("Ingested snippet (%d chunks added)\n", result.ChunksAdded)
	return nil
}

func runDocsUpload(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		return fmt.Errorf("not signed in")
	}

	result, err := a.docs.UploadFile(cmd.Context(), a.sessions.AccessToken(), args[0])
	if err != nil {
		return friendly(err)
	}
	fmt.Printf("Uploaded %s (%d chunks added)\n", args[0], result.ChunksAdded)
	return nil
}
