package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expertchat/expertchat/internal/domain/content"
	"github.com/expertchat/expertchat/internal/domain/conversation"
	"github.com/expertchat/expertchat/internal/domain/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat with the assistant.

In-chat commands:
  /new           start a new conversation
  /list          list your conversations
  /open <id>     switch to a conversation
  /delete <id>   delete a conversation
  /quit          leave the chat`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringP("conversation", "c", "", "Conversation id to resume")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		return fmt.Errorf("not signed in: run `expertchat login` first")
	}

	cancelSub := a.sessions.Subscribe(func(snap session.Snapshot) {
		if snap.Status == session.StatusExpired {
			fmt.Fprintln(os.Stderr, "Session expired; run `expertchat login` to continue.")
		}
	})
	defer cancelSub()

	ctx := cmd.Context()
	a.convs.LoadSummaries(ctx)

	if id, _ := cmd.Flags().GetString("conversation"); id != "" {
		if err := a.convs.Select(ctx, id); err != nil {
			return friendly(err)
		}
		for _, msg := range a.convs.Messages() {
			renderMessage(msg)
		}
	}

	fmt.Println("Connected. Type a message, or /quit to leave.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runChatCommand(a, cmd, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", friendly(err))
			}
			if quit {
				return nil
			}
			continue
		}

		if _, err := a.dispatcher.Send(ctx, line); err != nil {
			// The apology message is already in the transcript; show the
			// cause on stderr and keep going.
			fmt.Fprintf(os.Stderr, "Error: %v\n", friendly(err))
		}
		if msgs := a.convs.Messages(); len(msgs) > 0 {
			renderMessage(msgs[len(msgs)-1])
		}
	}
}

// runChatCommand handles a /command line. It reports whether the REPL should
// exit.
func runChatCommand(a *app, cmd *cobra.Command, line string) (bool, error) {
	ctx := cmd.Context()
	fields := strings.Fields(line)

	switch fields[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new":
		a.convs.NewConversation()
		fmt.Println("Started a new conversation.")
		return false, nil

	case "/list":
		printSummaries(a.convs.LoadSummaries(ctx), a.convs.ActiveID())
		return false, nil

	case "/open":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /open <id>")
		}
		if err := a.convs.Select(ctx, fields[1]); err != nil {
			return false, err
		}
		for _, msg := range a.convs.Messages() {
			renderMessage(msg)
		}
		return false, nil

	case "/delete":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /delete <id>")
		}
		return false, a.convs.Delete(ctx, fields[1], func() bool {
			return confirmPrompt(fmt.Sprintf("Delete conversation %s? [y/N] ", fields[1]))
		})

	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
}

func printSummaries(summaries []conversation.Summary, activeID string) {
	if len(summaries) == 0 {
		fmt.Println("No conversations yet.")
		return
	}
	for _, s := range summaries {
		marker := "  "
		if s.ID == activeID {
			marker = "* "
		}
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		if s.UpdatedAt.IsZero() {
			fmt.Printf("%s%s  %s\n", marker, s.ID, title)
		} else {
			fmt.Printf("%s%s  %s  (%s)\n", marker, s.ID, title, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
	}
}

// renderMessage prints one transcript message, splitting assistant output
// into prose and code blocks.
func renderMessage(msg conversation.Message) {
	switch msg.Role {
	case conversation.RoleUser:
		fmt.Printf("you> %s\n", msg.Content)
	case conversation.RoleAssistant:
		prefix := "assistant>"
		if msg.IsError {
			prefix = "assistant!"
		}
		segments := content.Parse(msg.Content)
		for i, seg := range segments {
			switch seg.Kind {
			case content.KindCode:
				fmt.Printf("--- %s ---\n%s\n---\n", seg.Language, seg.Code)
			default:
				if i == 0 {
					fmt.Printf("%s %s\n", prefix, seg.Text)
				} else {
					fmt.Println(seg.Text)
				}
			}
		}
		if len(segments) == 0 {
			fmt.Printf("%s\n", prefix)
		}
	default:
		fmt.Printf("%s> %s\n", msg.Role, msg.Content)
	}
}
