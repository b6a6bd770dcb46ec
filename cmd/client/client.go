// Package client implements the CLI commands for managing PPPoE clients,
// either against a running server or directly on local storage.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paularlott/cli"

	"pppoed/internal/model"
	"pppoed/internal/storage"
)

const dateLayout = "2006-01-02"

// generateID generates a UUIDv7
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Commands returns the client management commands
func Commands() []*cli.Command {
	return []*cli.Command{
		addCommand(),
		listCommand(),
		getCommand(),
		updateCommand(),
		deleteCommand(),
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Add a new client",
		Description: "Add a new PPPoE client to a router",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Client display name", Required: true},
			&cli.StringFlag{Name: "router", Usage: "Router ID", Required: true},
			&cli.StringFlag{Name: "username", Usage: "PPPoE username"},
			&cli.StringFlag{Name: "password", Usage: "PPPoE secret"},
			&cli.StringFlag{Name: "location", Usage: "Room number or building area"},
			&cli.StringFlag{Name: "plan", Usage: "Subscription plan"},
			&cli.StringFlag{Name: "payment-date", Usage: "Payment date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "expiration-date", Usage: "Expiration date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			if client.Username == "" {
				client.Username = client.Name
			}

			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					client.ID = generateID()
					if err := store.CreateClient(client); err != nil {
						return fmt.Errorf("failed to create client: %w", err)
					}
					fmt.Printf("Client created: %s (ID: %s)\n", client.Name, client.ID)
					return nil
				})
			}
			return addRemote(cmd, client)
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List clients",
		Description: "List clients, optionally filtered",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search name, ID, or username"},
			&cli.StringFlag{Name: "router", Usage: "Filter by router ID"},
			&cli.StringFlag{Name: "status", Usage: "Connection status (all, connected, disconnected)"},
			&cli.StringFlag{Name: "expiration", Usage: "Expiration filter (all, expiring-soon, expired)"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					clients, err := store.ListClients(&model.ClientFilter{
						SearchTerm: cmd.GetString("query"),
						RouterID:   cmd.GetString("router"),
						Status:     model.ConnectionStatus(cmd.GetString("status")),
						Expiration: model.ExpirationFilter(cmd.GetString("expiration")),
					})
					if err != nil {
						return fmt.Errorf("failed to list clients: %w", err)
					}
					printClients(clients)
					return nil
				})
			}
			return listRemote(cmd)
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Get a client",
		Description: "Get a client by ID",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					client, err := store.GetClient(id)
					if err != nil {
						return fmt.Errorf("failed to get client: %w", err)
					}
					printClient(client)
					return nil
				})
			}
			return getRemote(cmd, id)
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:        "update",
		Usage:       "Update a client",
		Description: "Update an existing client; only the given flags change",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Client display name"},
			&cli.StringFlag{Name: "router", Usage: "Router ID"},
			&cli.StringFlag{Name: "username", Usage: "PPPoE username"},
			&cli.StringFlag{Name: "password", Usage: "PPPoE secret"},
			&cli.StringFlag{Name: "location", Usage: "Room number or building area"},
			&cli.StringFlag{Name: "plan", Usage: "Subscription plan"},
			&cli.StringFlag{Name: "payment-date", Usage: "Payment date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "expiration-date", Usage: "Expiration date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			updates, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}

			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					client, err := store.GetClient(id)
					if err != nil {
						return fmt.Errorf("failed to get client: %w", err)
					}
					applyUpdates(client, updates)
					if err := store.UpdateClient(client); err != nil {
						return fmt.Errorf("failed to update client: %w", err)
					}
					fmt.Printf("Client updated: %s\n", client.Name)
					return nil
				})
			}
			return updateRemote(cmd, id, updates)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete a client",
		Description: "Delete a client",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					if err := store.DeleteClient(id); err != nil {
						return fmt.Errorf("failed to delete client: %w", err)
					}
					fmt.Println("Client deleted")
					return nil
				})
			}
			return deleteRemote(cmd, id)
		},
	}
}

// clientFromFlags builds a client from the command flags. Date flags
// left empty stay zero.
func clientFromFlags(cmd *cli.Command) (*model.Client, error) {
	client := &model.Client{
		Name:     cmd.GetString("name"),
		RouterID: cmd.GetString("router"),
		Username: cmd.GetString("username"),
		Password: cmd.GetString("password"),
		Location: cmd.GetString("location"),
		Plan:     cmd.GetString("plan"),
		Notes:    cmd.GetString("notes"),
	}

	var err error
	if v := cmd.GetString("payment-date"); v != "" {
		if client.PaymentDate, err = time.Parse(dateLayout, v); err != nil {
			return nil, fmt.Errorf("invalid payment-date: %w", err)
		}
	}
	if v := cmd.GetString("expiration-date"); v != "" {
		if client.ExpirationDate, err = time.Parse(dateLayout, v); err != nil {
			return nil, fmt.Errorf("invalid expiration-date: %w", err)
		}
	}
	return client, nil
}

// applyUpdates copies non-empty fields from updates onto client
func applyUpdates(client, updates *model.Client) {
	if updates.Name != "" {
		client.Name = updates.Name
	}
	if updates.RouterID != "" {
		client.RouterID = updates.RouterID
	}
	if updates.Username != "" {
		client.Username = updates.Username
	}
	if updates.Password != "" {
		client.Password = updates.Password
	}
	if updates.Location != "" {
		client.Location = updates.Location
	}
	if updates.Plan != "" {
		client.Plan = updates.Plan
	}
	if updates.Notes != "" {
		client.Notes = updates.Notes
	}
	if !updates.PaymentDate.IsZero() {
		client.PaymentDate = updates.PaymentDate
	}
	if !updates.ExpirationDate.IsZero() {
		client.ExpirationDate = updates.ExpirationDate
	}
}

func printClients(clients []model.Client) {
	if len(clients) == 0 {
		fmt.Println("No clients found")
		return
	}
	for i := range clients {
		printClient(&clients[i])
	}
}

func printClient(client *model.Client) {
	status := "disconnected"
	if client.IsConnected {
		status = "connected"
	}
	fmt.Printf("%s (ID: %s)\n", client.Name, client.ID)
	fmt.Printf("  Router: %s | Username: %s | Plan: %s | %s\n",
		client.RouterID, client.Username, client.Plan, status)
	if client.Location != "" {
		fmt.Printf("  Location: %s\n", client.Location)
	}
	fmt.Printf("  Payment: %s | Expires: %s\n",
		client.PaymentDate.Format(dateLayout), client.ExpirationDate.Format(dateLayout))
	if client.Notes != "" {
		fmt.Printf("  Notes: %s\n", client.Notes)
	}
	fmt.Println()
}
