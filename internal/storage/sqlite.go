package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"pppoed/internal/filter"
	"pppoed/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStorage implements Storage with SQLite backend
type SQLiteStorage struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite-based storage
func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "pppoed.db")

	// Open database with SQLite settings
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ss := &SQLiteStorage{
		db:   db,
		path: dbPath,
	}

	if err := ss.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return ss, nil
}

// initSchema creates the database schema
func (ss *SQLiteStorage) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	_, err = ss.db.Exec(string(schema))
	return err
}

// Close closes the database connection
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// GetDatabasePath returns the database file path
func (ss *SQLiteStorage) GetDatabasePath() string {
	return ss.path
}

// Seed loads the demo dataset if the database is empty
func (ss *SQLiteStorage) Seed() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var count int
	if err := ss.db.QueryRow("SELECT COUNT(*) FROM routers").Scan(&count); err != nil {
		return fmt.Errorf("checking seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, router := range SeedRouters() {
		router.CreatedAt = now
		router.UpdatedAt = now
		if err := insertRouter(tx, &router); err != nil {
			return err
		}
	}
	for _, client := range SeedClients() {
		client.CreatedAt = now
		client.UpdatedAt = now
		if err := insertClient(tx, &client); err != nil {
			return err
		}
	}
	for _, notification := range SeedNotifications() {
		if err := insertNotification(tx, &notification); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Client operations

const clientColumns = `id, router_id, username, password, name, location, plan,
       payment_date, expiration_date, is_connected, notes, created_at, updated_at`

// ListClients returns clients matching the filter, in insertion order
func (ss *SQLiteStorage) ListClients(f *model.ClientFilter) ([]model.Client, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`SELECT ` + clientColumns + ` FROM clients ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	clients, err := scanClients(rows)
	if err != nil {
		return nil, err
	}

	// Filtering is shared with the in-memory backend so both produce
	// identical results for the same dataset
	return filter.Clients(clients, f), nil
}

// GetClient retrieves a client by ID
func (ss *SQLiteStorage) GetClient(id string) (*model.Client, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`SELECT `+clientColumns+` FROM clients WHERE id = ? LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying client: %w", err)
	}
	defer rows.Close()

	clients, err := scanClients(rows)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, ErrClientNotFound
	}
	return &clients[0], nil
}

// CreateClient adds a new client. The referenced router must exist.
func (ss *SQLiteStorage) CreateClient(client *model.Client) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if client.ID == "" {
		return ErrInvalidID
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := routerExists(tx, client.RouterID); err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM clients WHERE id = ?)", client.ID).Scan(&exists); err != nil {
		return fmt.Errorf("checking client existence: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	if err := insertClient(tx, client); err != nil {
		return err
	}
	if err := refreshRouterCounters(tx, client.RouterID); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateClient updates an existing client. The referenced router must exist.
func (ss *SQLiteStorage) UpdateClient(client *model.Client) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var prevRouter string
	err = tx.QueryRow("SELECT router_id FROM clients WHERE id = ?", client.ID).Scan(&prevRouter)
	if err == sql.ErrNoRows {
		return ErrClientNotFound
	}
	if err != nil {
		return fmt.Errorf("querying client: %w", err)
	}

	if err := routerExists(tx, client.RouterID); err != nil {
		return err
	}

	client.UpdatedAt = time.Now()
	_, err = tx.Exec(`
		UPDATE clients
		SET router_id = ?, username = ?, password = ?, name = ?, location = ?, plan = ?,
		    payment_date = ?, expiration_date = ?, is_connected = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, client.RouterID, client.Username, client.Password, client.Name, client.Location,
		client.Plan, client.PaymentDate, client.ExpirationDate, client.IsConnected,
		client.Notes, client.UpdatedAt, client.ID)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}

	if err := refreshRouterCounters(tx, client.RouterID); err != nil {
		return err
	}
	if prevRouter != client.RouterID {
		if err := refreshRouterCounters(tx, prevRouter); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteClient removes a client
func (ss *SQLiteStorage) DeleteClient(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var routerID string
	err = tx.QueryRow("SELECT router_id FROM clients WHERE id = ?", id).Scan(&routerID)
	if err == sql.ErrNoRows {
		return ErrClientNotFound
	}
	if err != nil {
		return fmt.Errorf("querying client: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM clients WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	if err := refreshRouterCounters(tx, routerID); err != nil {
		return err
	}

	return tx.Commit()
}

// SetClientConnection flips the connection flag of a client
func (ss *SQLiteStorage) SetClientConnection(id string, connected bool) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var routerID string
	err = tx.QueryRow("SELECT router_id FROM clients WHERE id = ?", id).Scan(&routerID)
	if err == sql.ErrNoRows {
		return ErrClientNotFound
	}
	if err != nil {
		return fmt.Errorf("querying client: %w", err)
	}

	_, err = tx.Exec("UPDATE clients SET is_connected = ?, updated_at = ? WHERE id = ?",
		connected, time.Now(), id)
	if err != nil {
		return fmt.Errorf("updating client connection: %w", err)
	}
	if err := refreshRouterCounters(tx, routerID); err != nil {
		return err
	}

	return tx.Commit()
}

// Router operations

const routerColumns = `id, name, ip_address, username, password, port, location, model,
       connected_clients, disconnected_clients, total_clients,
       cpu_usage, memory_usage, temperature, uptime, last_seen, created_at, updated_at`

// ListRouters returns routers matching the filter, in insertion order
func (ss *SQLiteStorage) ListRouters(f *model.RouterFilter) ([]model.Router, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	query := `SELECT ` + routerColumns + ` FROM routers`
	args := []interface{}{}
	if f != nil && f.Location != "" {
		query += " WHERE location = ?"
		args = append(args, f.Location)
	}
	query += " ORDER BY rowid"

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying routers: %w", err)
	}
	defer rows.Close()

	return scanRouters(rows)
}

// GetRouter retrieves a router by ID
func (ss *SQLiteStorage) GetRouter(id string) (*model.Router, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`SELECT `+routerColumns+` FROM routers WHERE id = ? LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying router: %w", err)
	}
	defer rows.Close()

	routers, err := scanRouters(rows)
	if err != nil {
		return nil, err
	}
	if len(routers) == 0 {
		return nil, ErrRouterNotFound
	}
	return &routers[0], nil
}

// CreateRouter adds a new router
func (ss *SQLiteStorage) CreateRouter(router *model.Router) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if router.ID == "" {
		return ErrInvalidID
	}

	var exists bool
	if err := ss.db.QueryRow("SELECT EXISTS(SELECT 1 FROM routers WHERE id = ?)", router.ID).Scan(&exists); err != nil {
		return fmt.Errorf("checking router existence: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	now := time.Now()
	router.CreatedAt = now
	router.UpdatedAt = now

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRouter(tx, router); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateRouter updates an existing router
func (ss *SQLiteStorage) UpdateRouter(router *model.Router) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	router.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE routers
		SET name = ?, ip_address = ?, username = ?, password = ?, port = ?,
		    location = ?, model = ?,
		    connected_clients = ?, disconnected_clients = ?, total_clients = ?,
		    cpu_usage = ?, memory_usage = ?, temperature = ?, uptime = ?, last_seen = ?,
		    updated_at = ?
		WHERE id = ?
	`, router.Name, router.IPAddress, router.Username, router.Password, router.Port,
		router.Location, router.Model,
		router.ConnectedClients, router.DisconnectedClients, router.TotalClients,
		router.Health.CPUUsage, router.Health.MemoryUsage, router.Health.Temperature,
		router.Health.Uptime, router.Health.LastSeen, router.UpdatedAt, router.ID)
	if err != nil {
		return fmt.Errorf("updating router: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRouterNotFound
	}

	return nil
}

// DeleteRouter removes a router and cascades to its clients
func (ss *SQLiteStorage) DeleteRouter(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	result, err := ss.db.Exec("DELETE FROM routers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting router: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRouterNotFound
	}

	return nil
}

// ReplaceRouters commits a synced router collection in one transaction.
// Rows are matched by ID, so routers created since the snapshot was
// taken survive the commit.
func (ss *SQLiteStorage) ReplaceRouters(routers []model.Router) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range routers {
		router := &routers[i]
		_, err := tx.Exec(`
			UPDATE routers
			SET connected_clients = ?, disconnected_clients = ?, total_clients = ?,
			    cpu_usage = ?, memory_usage = ?, temperature = ?, uptime = ?, last_seen = ?,
			    updated_at = ?
			WHERE id = ?
		`, router.ConnectedClients, router.DisconnectedClients, router.TotalClients,
			router.Health.CPUUsage, router.Health.MemoryUsage, router.Health.Temperature,
			router.Health.Uptime, router.Health.LastSeen, time.Now(), router.ID)
		if err != nil {
			return fmt.Errorf("replacing router %s: %w", router.ID, err)
		}
	}

	return tx.Commit()
}

// Notification operations

const notificationColumns = `id, type, title, message, is_read, created_at,
       related_client_id, related_router_id, action_label`

// ListNotifications returns all notifications in insertion order
func (ss *SQLiteStorage) ListNotifications() ([]model.Notification, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`SELECT ` + notificationColumns + ` FROM notifications ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// GetNotification retrieves a notification by ID
func (ss *SQLiteStorage) GetNotification(id string) (*model.Notification, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`SELECT `+notificationColumns+` FROM notifications WHERE id = ? LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying notification: %w", err)
	}
	defer rows.Close()

	notifications, err := scanNotifications(rows)
	if err != nil {
		return nil, err
	}
	if len(notifications) == 0 {
		return nil, ErrNotificationNotFound
	}
	return &notifications[0], nil
}

// AddNotification appends a notification to the inbox
func (ss *SQLiteStorage) AddNotification(notification *model.Notification) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if notification.ID == "" {
		return ErrInvalidID
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertNotification(tx, notification); err != nil {
		return err
	}
	return tx.Commit()
}

// MarkNotificationRead marks one notification as read
func (ss *SQLiteStorage) MarkNotificationRead(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	result, err := ss.db.Exec("UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkAllNotificationsRead marks the whole inbox as read
func (ss *SQLiteStorage) MarkAllNotificationsRead() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	_, err := ss.db.Exec("UPDATE notifications SET is_read = 1")
	if err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

// DismissNotification removes one notification
func (ss *SQLiteStorage) DismissNotification(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	result, err := ss.db.Exec("DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("dismissing notification: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// ClearNotifications empties the inbox
func (ss *SQLiteStorage) ClearNotifications() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	_, err := ss.db.Exec("DELETE FROM notifications")
	if err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}

// UnreadCount returns the number of unread notifications
func (ss *SQLiteStorage) UnreadCount() (int, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var count int
	err := ss.db.QueryRow("SELECT COUNT(*) FROM notifications WHERE is_read = 0").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// Helper functions

func routerExists(tx *sql.Tx, id string) error {
	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM routers WHERE id = ?)", id).Scan(&exists); err != nil {
		return fmt.Errorf("checking router existence: %w", err)
	}
	if !exists {
		return ErrRouterNotFound
	}
	return nil
}

// refreshRouterCounters recomputes the cached client counters of one router
// from the clients table
func refreshRouterCounters(tx *sql.Tx, routerID string) error {
	_, err := tx.Exec(`
		UPDATE routers
		SET total_clients = (SELECT COUNT(*) FROM clients WHERE router_id = ?),
		    connected_clients = (SELECT COUNT(*) FROM clients WHERE router_id = ? AND is_connected = 1),
		    disconnected_clients = (SELECT COUNT(*) FROM clients WHERE router_id = ? AND is_connected = 0)
		WHERE id = ?
	`, routerID, routerID, routerID, routerID)
	if err != nil {
		return fmt.Errorf("refreshing router counters: %w", err)
	}
	return nil
}

func insertClient(tx *sql.Tx, client *model.Client) error {
	_, err := tx.Exec(`
		INSERT INTO clients (id, router_id, username, password, name, location, plan,
		                     payment_date, expiration_date, is_connected, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, client.ID, client.RouterID, client.Username, client.Password, client.Name,
		client.Location, client.Plan, client.PaymentDate, client.ExpirationDate,
		client.IsConnected, client.Notes, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func insertRouter(tx *sql.Tx, router *model.Router) error {
	_, err := tx.Exec(`
		INSERT INTO routers (id, name, ip_address, username, password, port, location, model,
		                     connected_clients, disconnected_clients, total_clients,
		                     cpu_usage, memory_usage, temperature, uptime, last_seen,
		                     created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, router.ID, router.Name, router.IPAddress, router.Username, router.Password, router.Port,
		router.Location, router.Model,
		router.ConnectedClients, router.DisconnectedClients, router.TotalClients,
		router.Health.CPUUsage, router.Health.MemoryUsage, router.Health.Temperature,
		router.Health.Uptime, router.Health.LastSeen, router.CreatedAt, router.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting router: %w", err)
	}
	return nil
}

func insertNotification(tx *sql.Tx, notification *model.Notification) error {
	_, err := tx.Exec(`
		INSERT INTO notifications (id, type, title, message, is_read, created_at,
		                           related_client_id, related_router_id, action_label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, notification.ID, string(notification.Type), notification.Title, notification.Message,
		notification.IsRead, notification.CreatedAt,
		notification.RelatedClientID, notification.RelatedRouterID, notification.ActionLabel)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func scanClients(rows *sql.Rows) ([]model.Client, error) {
	var clients []model.Client
	for rows.Next() {
		var c model.Client
		err := rows.Scan(&c.ID, &c.RouterID, &c.Username, &c.Password, &c.Name, &c.Location,
			&c.Plan, &c.PaymentDate, &c.ExpirationDate, &c.IsConnected, &c.Notes,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func scanRouters(rows *sql.Rows) ([]model.Router, error) {
	var routers []model.Router
	for rows.Next() {
		var r model.Router
		err := rows.Scan(&r.ID, &r.Name, &r.IPAddress, &r.Username, &r.Password, &r.Port,
			&r.Location, &r.Model,
			&r.ConnectedClients, &r.DisconnectedClients, &r.TotalClients,
			&r.Health.CPUUsage, &r.Health.MemoryUsage, &r.Health.Temperature,
			&r.Health.Uptime, &r.Health.LastSeen, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning router: %w", err)
		}
		routers = append(routers, r)
	}
	return routers, rows.Err()
}

func scanNotifications(rows *sql.Rows) ([]model.Notification, error) {
	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		var nType string
		err := rows.Scan(&n.ID, &nType, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt,
			&n.RelatedClientID, &n.RelatedRouterID, &n.ActionLabel)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Type = model.NotificationType(nType)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
