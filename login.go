package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paularlott/cli"
	"golang.org/x/term"
)

// loginCommand authenticates against a running server and prints the
// session token for use with X-Session-Token.
func loginCommand() *cli.Command {
	return &cli.Command{
		Name:        "login",
		Usage:       "Log in to a server",
		Description: "Authenticate against a running server and print a session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Usage:   "Account email address",
				EnvVars: []string{"PPPOED_EMAIL"},
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			email := cmd.GetString("email")
			if email == "" {
				fmt.Print("Email: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				email = strings.TrimSpace(line)
			}

			fmt.Print("Password: ")
			password, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}

			body, err := json.Marshal(map[string]string{
				"email":    email,
				"password": string(password),
			})
			if err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				cmd.GetString("server")+"/api/auth/login", bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			if token := cmd.GetString("token"); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			client := &http.Client{Timeout: 30 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusUnauthorized {
				return fmt.Errorf("invalid email or password")
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("login failed with status %d", resp.StatusCode)
			}

			var result struct {
				Token string `json:"token"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s\n", email)
			fmt.Printf("Session token: %s\n", result.Token)
			return nil
		},
	}
}
