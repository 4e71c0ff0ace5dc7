package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"riotscrape/pkg/auth"
)

// authCmd groups the API key management commands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Riot API key",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a Riot API key",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print("Riot API key: ")
		key, err := readSecret()
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to read API key:", err)
			os.Exit(1)
		}

		if err := auth.NewManager().Store(key); err != nil {
			fmt.Fprintln(os.Stderr, "failed to store API key:", err)
			os.Exit(1)
		}
		fmt.Println("API key stored.")
	},
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show where the API key comes from and a redacted form of it",
	Run: func(cmd *cobra.Command, args []string) {
		manager := auth.NewManager()
		key, err := manager.Retrieve()
		if err != nil {
			if errors.Is(err, auth.ErrNoAPIKey) {
				fmt.Println("No API key stored. Run 'riotscrape auth login' to store one.")
				return
			}
			fmt.Fprintln(os.Stderr, "failed to read API key:", err)
			os.Exit(1)
		}
		fmt.Printf("API key (%s): %s\n", manager.Source(), auth.Mask(key))
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Riot API key",
	Run: func(cmd *cobra.Command, args []string) {
		if err := auth.NewManager().Delete(); err != nil {
			if errors.Is(err, auth.ErrNoAPIKey) {
				fmt.Println("No API key stored.")
				return
			}
			fmt.Fprintln(os.Stderr, "failed to delete API key:", err)
			os.Exit(1)
		}
		fmt.Println("API key removed.")
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authLogoutCmd)
}

// readSecret reads a line from stdin without echoing when attached to a
// terminal.
func readSecret() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
