package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paularlott/mcp"

	"pppoed/internal/filter"
	"pppoed/internal/log"
	"pppoed/internal/model"
	"pppoed/internal/storage"
	"pppoed/internal/syncer"
)

const dateLayout = "2006-01-02"

// PreferencesSource supplies the current notification preferences
type PreferencesSource func() model.NotificationPreferences

// Server wraps the MCP server with the management storage
type Server struct {
	mcpServer   *mcp.Server
	storage     storage.Storage
	syncer      *syncer.Syncer
	prefs       PreferencesSource
	bearerToken string
}

// NewServer creates a new MCP server for PPPoE management
func NewServer(storage storage.Storage, sy *syncer.Syncer, prefs PreferencesSource, bearerToken string) *Server {
	if prefs == nil {
		prefs = func() model.NotificationPreferences {
			return model.DefaultNotificationPreferences()
		}
	}
	s := &Server{
		mcpServer:   mcp.NewServer("pppoed", "1.0.0"),
		storage:     storage,
		syncer:      sy,
		prefs:       prefs,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

// registerTools registers all management tools
func (s *Server) registerTools() {
	// Client tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("client_save", "Create a new PPPoE client or update an existing one. If id is provided and exists, it updates; otherwise creates new.",
			mcp.String("id", "Client ID (if updating existing client)"),
			mcp.String("name", "Client display name", mcp.Required()),
			mcp.String("username", "PPPoE username"),
			mcp.String("password", "PPPoE secret"),
			mcp.String("router_id", "ID of the router the client belongs to"),
			mcp.String("location", "Room number or building area"),
			mcp.String("plan", "Subscription plan (e.g., Premium 50Mbps)"),
			mcp.String("payment_date", "Payment date (YYYY-MM-DD)"),
			mcp.String("expiration_date", "Subscription expiration date (YYYY-MM-DD)"),
			mcp.String("notes", "Free-form notes"),
		),
		s.handleClientSave,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("client_get", "Get a PPPoE client by ID",
			mcp.String("id", "Client ID", mcp.Required()),
		),
		s.handleClientGet,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("client_list", "List PPPoE clients, optionally filtered by search query, router, connection status, or expiration",
			mcp.String("query", "Search query (matches name, ID, username)"),
			mcp.String("router_id", "Filter by router ID"),
			mcp.String("status", "Connection status filter: all, connected, disconnected"),
			mcp.String("expiration", "Expiration filter: all, expiring-soon, expired"),
		),
		s.handleClientList,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("client_delete", "Delete a PPPoE client",
			mcp.String("id", "Client ID", mcp.Required()),
		),
		s.handleClientDelete,
	)

	// Router tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("router_save", "Create a new router or update an existing one. If id is provided and exists, it updates; otherwise creates new.",
			mcp.String("id", "Router ID (if updating existing router)"),
			mcp.String("name", "Router name", mcp.Required()),
			mcp.String("ip_address", "Management IP address"),
			mcp.String("username", "API username"),
			mcp.String("password", "API password"),
			mcp.String("port", "API port (default 8728)"),
			mcp.String("location", "Location used for grouping"),
			mcp.String("model", "Hardware model"),
		),
		s.handleRouterSave,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("router_get", "Get a router with its health metrics by ID",
			mcp.String("id", "Router ID", mcp.Required()),
		),
		s.handleRouterGet,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("router_list", "List all routers with client counters and health, optionally filtered by location",
			mcp.String("location", "Filter by location"),
		),
		s.handleRouterList,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("router_delete", "Delete a router and all of its clients",
			mcp.String("id", "Router ID", mcp.Required()),
		),
		s.handleRouterDelete,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("router_sync", "Refresh health metrics and client counters for all routers"),
		s.handleRouterSync,
	)

	// Notification tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("notification_list", "List notifications newest first, optionally filtered by type",
			mcp.String("type", "Filter by type: expiration, payment, router, system, connection"),
		),
		s.handleNotificationList,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("notification_mark_read", "Mark one notification as read, or all of them",
			mcp.String("id", "Notification ID; use 'all' to mark every notification read", mcp.Required()),
		),
		s.handleNotificationMarkRead,
	)

	// Dashboard

	s.mcpServer.RegisterTool(
		mcp.NewTool("dashboard_summary", "Get the dashboard summary with router, client, and expiration counts"),
		s.handleDashboardSummary,
	)
}

// HandleRequest serves an MCP request over HTTP
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	// Check bearer token if configured
	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

// Client tool handlers

func (s *Server) handleClientSave(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}

	id, _ := req.String("id")
	var client *model.Client
	isUpdate := false

	if id != "" {
		existing, err := s.storage.GetClient(id)
		if err == nil {
			client = existing
			isUpdate = true
		}
	}

	username := req.StringOr("username", "")
	password := req.StringOr("password", "")
	routerID := req.StringOr("router_id", "")
	location := req.StringOr("location", "")
	plan := req.StringOr("plan", "")
	notes := req.StringOr("notes", "")

	paymentDate, err := parseDate(req.StringOr("payment_date", ""))
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("invalid payment_date: " + err.Error())
	}
	expirationDate, err := parseDate(req.StringOr("expiration_date", ""))
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("invalid expiration_date: " + err.Error())
	}

	if isUpdate {
		client.Name = name
		if username != "" {
			client.Username = username
		}
		if password != "" {
			client.Password = password
		}
		if routerID != "" {
			client.RouterID = routerID
		}
		if location != "" {
			client.Location = location
		}
		if plan != "" {
			client.Plan = plan
		}
		if notes != "" {
			client.Notes = notes
		}
		if !paymentDate.IsZero() {
			client.PaymentDate = paymentDate
		}
		if !expirationDate.IsZero() {
			client.ExpirationDate = expirationDate
		}

		if err := s.storage.UpdateClient(client); err != nil {
			log.Error("MCP client update failed", "error", err, "id", client.ID)
			return nil, mcp.NewToolErrorInternal("failed to update client: " + err.Error())
		}

		log.Info("MCP client updated", "id", client.ID, "name", client.Name)
		return mcp.NewToolResponseText(fmt.Sprintf("Client updated: %s (ID: %s)", client.Name, client.ID)), nil
	}

	if routerID == "" {
		return nil, mcp.NewToolErrorInvalidParams("router_id is required when creating a client")
	}
	if username == "" {
		username = name
	}

	client = &model.Client{
		ID:             id,
		RouterID:       routerID,
		Username:       username,
		Password:       password,
		Name:           name,
		Location:       location,
		Plan:           plan,
		PaymentDate:    paymentDate,
		ExpirationDate: expirationDate,
		Notes:          notes,
	}
	if client.ID == "" {
		client.ID = generateID()
	}

	if err := s.storage.CreateClient(client); err != nil {
		log.Error("MCP client creation failed", "error", err, "name", client.Name)
		return nil, mcp.NewToolErrorInternal("failed to create client: " + err.Error())
	}

	log.Info("MCP client created", "id", client.ID, "name", client.Name)
	return mcp.NewToolResponseText(fmt.Sprintf("Client created: %s (ID: %s)", client.Name, client.ID)), nil
}

func (s *Server) handleClientGet(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("id is required: " + err.Error())
	}

	client, err := s.storage.GetClient(id)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("client not found: " + err.Error())
	}

	return mcp.NewToolResponseText(s.formatClientSummary(client)), nil
}

func (s *Server) handleClientList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	f := &model.ClientFilter{
		SearchTerm: req.StringOr("query", ""),
		RouterID:   req.StringOr("router_id", ""),
		Status:     model.ConnectionStatus(req.StringOr("status", "")),
		Expiration: model.ExpirationFilter(req.StringOr("expiration", "")),
		Window:     s.prefs().ExpirationDays,
	}

	clients, err := s.storage.ListClients(f)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to list clients: " + err.Error())
	}

	if len(clients) == 0 {
		return mcp.NewToolResponseText("No clients found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d client(s):\n\n", len(clients)))
	for i := range clients {
		result.WriteString(s.formatClientSummary(&clients[i]))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleClientDelete(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("id is required: " + err.Error())
	}

	if err := s.storage.DeleteClient(id); err != nil {
		return nil, mcp.NewToolErrorInternal("failed to delete client: " + err.Error())
	}

	log.Info("MCP client deleted", "id", id)
	return mcp.NewToolResponseText("Client deleted successfully"), nil
}

// Router tool handlers

func (s *Server) handleRouterSave(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}

	id, _ := req.String("id")
	var router *model.Router
	isUpdate := false

	if id != "" {
		existing, err := s.storage.GetRouter(id)
		if err == nil {
			router = existing
			isUpdate = true
		}
	}

	ipAddress := req.StringOr("ip_address", "")
	username := req.StringOr("username", "")
	password := req.StringOr("password", "")
	location := req.StringOr("location", "")
	hwModel := req.StringOr("model", "")

	port := 0
	if portStr := req.StringOr("port", ""); portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return nil, mcp.NewToolErrorInvalidParams("invalid port: " + portStr)
		}
	}

	if isUpdate {
		router.Name = name
		if ipAddress != "" {
			router.IPAddress = ipAddress
		}
		if username != "" {
			router.Username = username
		}
		if password != "" {
			router.Password = password
		}
		if location != "" {
			router.Location = location
		}
		if hwModel != "" {
			router.Model = hwModel
		}
		if port != 0 {
			router.Port = port
		}

		if err := s.storage.UpdateRouter(router); err != nil {
			log.Error("MCP router update failed", "error", err, "id", router.ID)
			return nil, mcp.NewToolErrorInternal("failed to update router: " + err.Error())
		}

		log.Info("MCP router updated", "id", router.ID, "name", router.Name)
		return mcp.NewToolResponseText(fmt.Sprintf("Router updated: %s (ID: %s)", router.Name, router.ID)), nil
	}

	if port == 0 {
		port = 8728
	}
	router = &model.Router{
		ID:        id,
		Name:      name,
		IPAddress: ipAddress,
		Username:  username,
		Password:  password,
		Port:      port,
		Location:  location,
		Model:     hwModel,
	}
	if router.ID == "" {
		router.ID = generateID()
	}

	if err := s.storage.CreateRouter(router); err != nil {
		log.Error("MCP router creation failed", "error", err, "name", router.Name)
		return nil, mcp.NewToolErrorInternal("failed to create router: " + err.Error())
	}

	log.Info("MCP router created", "id", router.ID, "name", router.Name)
	return mcp.NewToolResponseText(fmt.Sprintf("Router created: %s (ID: %s)", router.Name, router.ID)), nil
}

func (s *Server) handleRouterGet(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("id is required: " + err.Error())
	}

	router, err := s.storage.GetRouter(id)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("router not found: " + err.Error())
	}

	return mcp.NewToolResponseText(s.formatRouterSummary(router)), nil
}

func (s *Server) handleRouterList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	var f *model.RouterFilter
	if location := req.StringOr("location", ""); location != "" {
		f = &model.RouterFilter{Location: location}
	}

	routers, err := s.storage.ListRouters(f)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to list routers: " + err.Error())
	}

	if len(routers) == 0 {
		return mcp.NewToolResponseText("No routers found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d router(s):\n\n", len(routers)))
	for i := range routers {
		result.WriteString(s.formatRouterSummary(&routers[i]))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleRouterDelete(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("id is required: " + err.Error())
	}

	if err := s.storage.DeleteRouter(id); err != nil {
		return nil, mcp.NewToolErrorInternal("failed to delete router: " + err.Error())
	}

	log.Info("MCP router deleted", "id", id)
	return mcp.NewToolResponseText("Router and its clients deleted successfully"), nil
}

func (s *Server) handleRouterSync(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	if err := s.syncer.Sync(ctx); err != nil {
		return nil, mcp.NewToolErrorInternal("sync failed: " + err.Error())
	}

	routers, err := s.storage.ListRouters(nil)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to list routers: " + err.Error())
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Sync complete, %d router(s) refreshed:\n\n", len(routers)))
	for i := range routers {
		result.WriteString(s.formatRouterSummary(&routers[i]))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

// Notification tool handlers

func (s *Server) handleNotificationList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	notifications, err := s.storage.ListNotifications()
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to list notifications: " + err.Error())
	}

	if t := req.StringOr("type", ""); t != "" {
		notifications = filter.NotificationsByType(notifications, model.NotificationType(t))
	}
	notifications = filter.SortNotifications(notifications)

	if len(notifications) == 0 {
		return mcp.NewToolResponseText("No notifications"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%d notification(s):\n\n", len(notifications)))
	for _, n := range notifications {
		read := " "
		if !n.IsRead {
			read = "*"
		}
		result.WriteString(fmt.Sprintf("[%s] %s %s — %s (ID: %s, %s)\n",
			n.Type, read, n.Title, n.Message, n.ID, n.CreatedAt.Format(time.RFC3339)))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleNotificationMarkRead(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("id is required: " + err.Error())
	}

	if id == "all" {
		if err := s.storage.MarkAllNotificationsRead(); err != nil {
			return nil, mcp.NewToolErrorInternal("failed to mark notifications read: " + err.Error())
		}
		return mcp.NewToolResponseText("All notifications marked read"), nil
	}

	if err := s.storage.MarkNotificationRead(id); err != nil {
		return nil, mcp.NewToolErrorInternal("failed to mark notification read: " + err.Error())
	}
	return mcp.NewToolResponseText("Notification marked read"), nil
}

// Dashboard tool handler

func (s *Server) handleDashboardSummary(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	routers, err := s.storage.ListRouters(nil)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to list routers: " + err.Error())
	}
	clients, err := s.storage.ListClients(nil)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to list clients: " + err.Error())
	}

	prefs := s.prefs()
	d := filter.BuildDashboard(routers, clients, prefs, time.Now())
	stats := filter.Stats(routers, prefs)

	var result strings.Builder
	result.WriteString("Dashboard summary:\n")
	result.WriteString(fmt.Sprintf("  Routers: %d (%d with issues)\n", d.Summary.TotalRouters, stats.WithIssues))
	result.WriteString(fmt.Sprintf("  Clients: %d (%d connected, %d disconnected)\n",
		d.Summary.TotalClients, d.Summary.ConnectedClients,
		d.Summary.TotalClients-d.Summary.ConnectedClients))
	result.WriteString(fmt.Sprintf("  Expiring within %d days: %d\n", prefs.ExpirationDays, d.Summary.ExpiringSoon))
	return mcp.NewToolResponseText(result.String()), nil
}

// Formatters

func (s *Server) formatClientSummary(client *model.Client) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (ID: %s)\n", client.Name, client.ID))
	b.WriteString(fmt.Sprintf("  Router: %s | Username: %s | Plan: %s\n",
		client.RouterID, client.Username, client.Plan))
	if client.Location != "" {
		b.WriteString(fmt.Sprintf("  Location: %s\n", client.Location))
	}
	status := "disconnected"
	if client.IsConnected {
		status = "connected"
	}
	b.WriteString(fmt.Sprintf("  Status: %s | Payment: %s | Expires: %s\n",
		status, client.PaymentDate.Format(dateLayout), client.ExpirationDate.Format(dateLayout)))
	if client.Notes != "" {
		b.WriteString(fmt.Sprintf("  Notes: %s\n", client.Notes))
	}
	b.WriteString("\n")
	return b.String()
}

func (s *Server) formatRouterSummary(router *model.Router) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (ID: %s)\n", router.Name, router.ID))
	b.WriteString(fmt.Sprintf("  %s:%d | %s | %s\n",
		router.IPAddress, router.Port, router.Location, router.Model))
	b.WriteString(fmt.Sprintf("  Clients: %d total, %d connected, %d disconnected\n",
		router.TotalClients, router.ConnectedClients, router.DisconnectedClients))
	b.WriteString(fmt.Sprintf("  Health: CPU %.0f%% | Mem %.0f%% | %.0f°C | up %s\n",
		router.Health.CPUUsage, router.Health.MemoryUsage,
		router.Health.Temperature, router.Health.Uptime))
	b.WriteString("\n")
	return b.String()
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}

// generateID generates a UUIDv7
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
