// Package router implements the CLI commands for managing routers and
// triggering health synchronization.
package router

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/paularlott/cli"

	"pppoed/internal/discovery"
	"pppoed/internal/model"
	"pppoed/internal/storage"
	"pppoed/internal/syncer"
)

// Commands returns the router management commands
func Commands() []*cli.Command {
	return []*cli.Command{
		addCommand(),
		listCommand(),
		getCommand(),
		deleteCommand(),
		syncCommand(),
		discoverCommand(),
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Add a new router",
		Description: "Add a router to the managed fleet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Router name", Required: true},
			&cli.StringFlag{Name: "ip", Usage: "Management IP address", Required: true},
			&cli.StringFlag{Name: "username", Usage: "API username", DefaultValue: "admin"},
			&cli.StringFlag{Name: "password", Usage: "API password"},
			&cli.IntFlag{Name: "port", Usage: "API port", DefaultValue: 8728},
			&cli.StringFlag{Name: "location", Usage: "Location used for grouping"},
			&cli.StringFlag{Name: "model", Usage: "Hardware model"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			router := &model.Router{
				Name:      cmd.GetString("name"),
				IPAddress: cmd.GetString("ip"),
				Username:  cmd.GetString("username"),
				Password:  cmd.GetString("password"),
				Port:      cmd.GetInt("port"),
				Location:  cmd.GetString("location"),
				Model:     cmd.GetString("model"),
			}

			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					router.ID = generateID()
					if err := store.CreateRouter(router); err != nil {
						return fmt.Errorf("failed to create router: %w", err)
					}
					fmt.Printf("Router created: %s (ID: %s)\n", router.Name, router.ID)
					return nil
				})
			}
			return addRemote(cmd, router)
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List routers",
		Description: "List routers with client counters and health",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "location", Usage: "Filter by location"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					var f *model.RouterFilter
					if location := cmd.GetString("location"); location != "" {
						f = &model.RouterFilter{Location: location}
					}
					routers, err := store.ListRouters(f)
					if err != nil {
						return fmt.Errorf("failed to list routers: %w", err)
					}
					printRouters(routers)
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
		Usage:       "Get a router",
		Description: "Get a router by ID",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					router, err := store.GetRouter(id)
					if err != nil {
						return fmt.Errorf("failed to get router: %w", err)
					}
					printRouter(router)
					return nil
				})
			}
			return getRemote(cmd, id)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete a router",
		Description: "Delete a router and all of its clients",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					if err := store.DeleteRouter(id); err != nil {
						return fmt.Errorf("failed to delete router: %w", err)
					}
					fmt.Println("Router and its clients deleted")
					return nil
				})
			}
			return deleteRemote(cmd, id)
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:        "sync",
		Usage:       "Sync router health",
		Description: "Refresh health metrics and client counters for all routers",
		Run: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.GetBool("local") {
				return withLocal(cmd, func(store storage.Storage) error {
					sy := syncer.New(store, syncer.WithDelay(0))
					if err := sy.Sync(ctx); err != nil {
						return fmt.Errorf("sync failed: %w", err)
					}
					routers, err := store.ListRouters(nil)
					if err != nil {
						return err
					}
					fmt.Printf("Synced %d routers\n", len(routers))
					printRouters(routers)
					return nil
				})
			}
			return syncRemote(cmd)
		},
	}
}

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:        "discover",
		Usage:       "Scan a subnet for routers",
		Description: "Probe a CIDR for hosts exposing RouterOS management ports",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subnet", Usage: "CIDR to scan (e.g. 192.168.88.0/24)", Required: true},
			&cli.BoolFlag{Name: "icmp", Usage: "Send ICMP echo probes (needs raw socket privileges)"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.GetBool("local") {
				var opts []discovery.Option
				if cmd.GetBool("icmp") {
					opts = append(opts, discovery.WithICMP())
				}
				scanner := discovery.NewScanner(opts...)
				scan, err := scanner.Scan(ctx, cmd.GetString("subnet"))
				if err != nil {
					return fmt.Errorf("scan failed: %w", err)
				}
				printScan(scan)
				return nil
			}
			return discoverRemote(cmd)
		},
	}
}

func printScan(scan *discovery.Scan) {
	fmt.Printf("Scanned %d hosts on %s, %d answered\n",
		scan.ScannedHosts, scan.Subnet, len(scan.Candidates))
	for _, c := range scan.Candidates {
		marker := " "
		if c.LooksRouter {
			marker = "*"
		}
		fmt.Printf("%s %-15s %-30s ports %v (confidence %d%%)\n",
			marker, c.IP, c.Hostname, c.OpenPorts, c.Confidence)
	}
	if len(scan.Candidates) > 0 {
		fmt.Println("* = RouterOS management port open")
	}
}

// generateID generates a UUIDv7
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func printRouters(routers []model.Router) {
	if len(routers) == 0 {
		fmt.Println("No routers found")
		return
	}
	for i := range routers {
		printRouter(&routers[i])
	}
}

func printRouter(router *model.Router) {
	fmt.Printf("%s (ID: %s)\n", router.Name, router.ID)
	fmt.Printf("  %s:%d | %s | %s\n",
		router.IPAddress, router.Port, router.Location, router.Model)
	fmt.Printf("  Clients: %d total, %d connected, %d disconnected\n",
		router.TotalClients, router.ConnectedClients, router.DisconnectedClients)
	fmt.Printf("  Health: CPU %.0f%% | Mem %.0f%% | %.0f°C | up %s\n",
		router.Health.CPUUsage, router.Health.MemoryUsage,
		router.Health.Temperature, router.Health.Uptime)
	fmt.Println()
}
