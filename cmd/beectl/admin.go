package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"spellingbee/internal/repository"
	"spellingbee/internal/service"
)

var readPasswordFunc = term.ReadPassword // mockable

func newCreateAdminCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator, or promote an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			authService := service.NewAuthService(repository.NewUserRepository(db), 0)
			user, err := authService.CreateAdmin(email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s (id %d) ready\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email (required)")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.MarkFlagRequired("email")
	return cmd
}

// promptPassword reads the password twice without echo
func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter password: ")
	first, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(first)) == "" {
		return "", errors.New("password must not be empty")
	}

	fmt.Fprint(out, "Confirm password: ")
	second, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
