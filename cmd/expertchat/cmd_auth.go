package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Long:  `Sign in with your email and password. The session survives restarts until you log out.`,
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the persisted session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	signupCmd.Flags().StringP("email", "e", "", "Account email")
	signupCmd.Flags().StringP("name", "n", "", "Display name")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	email, err := requireEmail(cmd)
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if _, err := a.sessions.Login(cmd.Context(), email, password); err != nil {
		return friendly(err)
	}

	snap := a.sessions.State()
	fmt.Printf("Signed in as %s\n", snap.User.Email)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	email, err := requireEmail(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	if strings.TrimSpace(name) == "" {
		name, err = promptLine("Display name: ")
		if err != nil {
			return err
		}
	}

	password, err := promptPassword("Password (min 8 characters): ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if _, err := a.sessions.Signup(cmd.Context(), email, name, password); err != nil {
		return friendly(err)
	}

	fmt.Printf("Account created. Signed in as %s\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.State().Authenticated() {
		fmt.Println("Not signed in.")
		return nil
	}
	if err := a.sessions.Logout(cmd.Context()); err != nil {
		// The local session is gone either way.
		a.log.Warn().Err(err).Msg("remote logout failed")
	}
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.sessions.State()
	if !snap.Authenticated() || snap.User == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("Email: %s\n", snap.User.Email)
	if snap.User.Name != "" {
		fmt.Printf("Name:  %s\n", snap.User.Name)
	}
	return nil
}

func requireEmail(cmd *cobra.Command) (string, error) {
	email, _ := cmd.Flags().GetString("email")
	email = strings.TrimSpace(email)
	if email != "" {
		return email, nil
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return "", err
	}
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	return email, nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal, and falls back
// to a plain line read when it is piped.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// friendly surfaces the server's detail text when there is one, instead of
// the full error chain.
func friendly(err error) error {
	if detail := apperrors.DetailOf(err); detail != "" {
		return fmt.Errorf("%s", detail)
	}
	return err
}
