package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/khrees2412/pathweiz/internal/auth"
	"github.com/khrees2412/pathweiz/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Sign in to your Pathweiz account",
	Example: `  pathweiz login --email you@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		in := bufio.NewReader(cmd.InOrStdin())

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			if email, err = prompt(cmd, in, "Email: "); err != nil {
				return err
			}
		}
		password, err := promptPassword(cmd, in, "Password: ")
		if err != nil {
			return err
		}

		if err := a.Auth.Login(cmd.Context(), email, password); err != nil {
			return err
		}

		user := a.Auth.Session().User
		fmt.Fprintln(cmd.OutOrStdout(), render.Notice("Signed in as "+displayName(user.Username, user.Email), true))
		if !a.Status.Status() {
			fmt.Fprintln(cmd.OutOrStdout(), "Take the career survey to get your recommendations: pathweiz survey")
		}
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:     "signup",
	Short:   "Create a Pathweiz account",
	Example: `  pathweiz signup --email you@example.com --username jane`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		in := bufio.NewReader(cmd.InOrStdin())

		form := auth.SignupForm{}
		form.Username, _ = cmd.Flags().GetString("username")
		form.Email, _ = cmd.Flags().GetString("email")
		if form.Username == "" {
			if form.Username, err = prompt(cmd, in, "Username: "); err != nil {
				return err
			}
		}
		if form.Email == "" {
			if form.Email, err = prompt(cmd, in, "Email: "); err != nil {
				return err
			}
		}
		if form.Password, err = promptPassword(cmd, in, "Password: "); err != nil {
			return err
		}
		if form.ConfirmPassword, err = promptPassword(cmd, in, "Confirm password: "); err != nil {
			return err
		}

		confirm, err := a.Auth.Signup(cmd.Context(), form)
		if err != nil {
			return err
		}
		if confirm {
			fmt.Fprintln(cmd.OutOrStdout(), render.Notice("Account created. Check your email to confirm it, then run: pathweiz login", true))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Notice("Account created and signed in as "+form.Username, true))
		fmt.Fprintln(cmd.OutOrStdout(), "Next: pathweiz survey")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if a.Auth.Session() == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		if err := a.Auth.Logout(cmd.Context()); err != nil {
			// the local session is gone either way
			logger.Warn("Remote sign out failed", zap.Error(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Notice("Signed out", true))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and whether recommendations are ready",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		session, err := a.RequireSession(cmd.Context())
		if err != nil {
			return err
		}
		a.Status.Refresh(cmd.Context(), a.API)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, render.TitleStyle.Render("Profile"))
		if session.User.Username != "" {
			fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render("Username:"), session.User.Username)
		}
		fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render("Email:"), session.User.Email)
		if a.Status.Status() {
			fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render("Recommendations:"), render.SuccessStyle.Render("ready (pathweiz dashboard)"))
		} else {
			fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render("Recommendations:"), render.MutedStyle.Render("none yet (pathweiz survey)"))
		}
		return nil
	},
}

func displayName(username, email string) string {
	if username != "" {
		return username
	}
	return email
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	line, err := readLine(cmd, in, label)
	return strings.TrimSpace(line), err
}

func readLine(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptPassword reads without echo when stdin is a terminal
func promptPassword(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), label)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}
	return readLine(cmd, in, label)
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().String("email", "", "Account email")
	signupCmd.Flags().String("email", "", "Account email")
	signupCmd.Flags().String("username", "", "Display name")
}
