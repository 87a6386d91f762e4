package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expertchat/expertchat/internal/domain/user"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Account management commands",
}

var accountUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your display name or password",
	RunE:  runAccountUpdate,
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete your account",
	RunE:  runAccountDelete,
}

var accountRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new token pair",
	RunE:  runAccountRefresh,
}

func init() {
	accountCmd.AddCommand(accountUpdateCmd)
	accountCmd.AddCommand(accountDeleteCmd)
	accountCmd.AddCommand(accountRefreshCmd)

	accountUpdateCmd.Flags().StringP("name", "n", "", "New display name")
	accountUpdateCmd.Flags().Bool("password", false, "Prompt for a new password")
	accountDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runAccountUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		return fmt.Errorf("not signed in")
	}

	var update user.Update
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		update.Name = &name
	}
	if change, _ := cmd.Flags().GetBool("password"); change {
		password, err := promptPassword("New password (min 8 characters): ")
		if err != nil {
			return err
		}
		update.Password = &password
	}
	if update.Name == nil && update.Password == nil {
		return fmt.Errorf("nothing to update: pass --name or --password")
	}

	u, err := a.sessions.UpdateProfile(cmd.Context(), update)
	if err != nil {
		return friendly(err)
	}
	fmt.Printf("Profile updated for %s\n", u.Email)
	return nil
}

func runAccountDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.sessions.State()
	if !snap.Authenticated() {
		return fmt.Errorf("not signed in")
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !confirmPrompt(fmt.Sprintf("Delete the account %s and all its conversations? [y/N] ", snap.User.Email)) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.sessions.DeleteAccount(cmd.Context()); err != nil {
		return friendly(err)
	}
	fmt.Println("Account deleted.")
	return nil
}

func runAccountRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		return fmt.Errorf("not signed in")
	}
	if _, err := a.sessions.RefreshToken(cmd.Context()); err != nil {
		return friendly(err)
	}
	fmt.Println("Session refreshed.")
	return nil
}

func confirmPrompt(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
