package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"predman/internal/client"
	"predman/internal/domain"
	"predman/internal/session"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func registerCmd() *cobra.Command {
	var email, login, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, password)
			if err != nil {
				return err
			}
			c := client.New(viper.GetString("api-url"), "")
			resp, err := c.Register(cmd.Context(), domain.RegisterRequest{Email: email, Login: login, Password: pw})
			if err != nil {
				return err
			}
			return saveLogin(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&login, "login", "", "display login")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, password)
			if err != nil {
				return err
			}
			c := client.New(viper.GetString("api-url"), "")
			resp, err := c.Login(cmd.Context(), domain.LoginRequest{Email: email, Password: pw})
			if err != nil {
				return err
			}
			return saveLogin(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openSession()
			if err != nil {
				return err
			}
			if err := store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := authedClient()
			if err != nil {
				return err
			}
			me, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), me, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "ID\t%s\n", me.ID)
				fmt.Fprintf(tw, "LOGIN\t%s\n", me.Login)
				fmt.Fprintf(tw, "EMAIL\t%s\n", me.Email)
			})
		},
	}
}

func saveLogin(cmd *cobra.Command, resp *domain.AuthResponse) error {
	store, err := openSession()
	if err != nil {
		return err
	}
	if err := store.Login(session.FromAuth(*resp)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", resp.Login, resp.Email)
	return nil
}

func passwordOrPrompt(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "password: ")
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", domain.Invalid("password is required")
	}
	return strings.TrimSpace(sc.Text()), nil
}
