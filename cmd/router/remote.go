package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paularlott/cli"

	"pppoed/internal/config"
	"pppoed/internal/discovery"
	"pppoed/internal/model"
	"pppoed/internal/storage"
)

// withLocal opens the configured SQLite storage and runs fn against it
func withLocal(cmd *cli.Command, fn func(storage.Storage) error) error {
	cfg := config.Load(&config.Config{DataDir: cmd.GetString("data-dir")})
	store, err := storage.NewSQLiteStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening local storage: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func newRequest(cmd *cli.Command, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, cmd.GetString("server")+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := cmd.GetString("token"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func serverError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("server error: %s", string(body))
}

func addRemote(cmd *cli.Command, router *model.Router) error {
	data, err := json.Marshal(router)
	if err != nil {
		return err
	}

	req, err := newRequest(cmd, http.MethodPost, "/api/routers", bytes.NewReader(data))
	if err != nil {
		return err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return serverError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(router); err != nil {
		return err
	}

	fmt.Printf("Router created: %s (ID: %s)\n", router.Name, router.ID)
	return nil
}

func listRemote(cmd *cli.Command) error {
	path := "/api/routers"
	if location := cmd.GetString("location"); location != "" {
		path += "?location=" + url.QueryEscape(location)
	}

	req, err := newRequest(cmd, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	var routers []model.Router
	if err := json.NewDecoder(resp.Body).Decode(&routers); err != nil {
		return err
	}
	printRouters(routers)
	return nil
}

func getRemote(cmd *cli.Command, id string) error {
	req, err := newRequest(cmd, http.MethodGet, "/api/routers/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	var router model.Router
	if err := json.NewDecoder(resp.Body).Decode(&router); err != nil {
		return err
	}
	printRouter(&router)
	return nil
}

func deleteRemote(cmd *cli.Command, id string) error {
	req, err := newRequest(cmd, http.MethodDelete, "/api/routers/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return serverError(resp)
	}

	fmt.Println("Router and its clients deleted")
	return nil
}

func discoverRemote(cmd *cli.Command) error {
	data, err := json.Marshal(map[string]string{"subnet": cmd.GetString("subnet")})
	if err != nil {
		return err
	}

	req, err := newRequest(cmd, http.MethodPost, "/api/discovery/scan", bytes.NewReader(data))
	if err != nil {
		return err
	}
	// Subnet sweeps can outlast the default client timeout
	scanClient := &http.Client{Timeout: 5 * time.Minute}
	resp, err := scanClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("a scan is already running")
	}
	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	var scan discovery.Scan
	if err := json.NewDecoder(resp.Body).Decode(&scan); err != nil {
		return err
	}
	printScan(&scan)
	return nil
}

func syncRemote(cmd *cli.Command) error {
	req, err := newRequest(cmd, http.MethodPost, "/api/sync", nil)
	if err != nil {
		return err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("a sync is already running")
	}
	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	var routers []model.Router
	if err := json.NewDecoder(resp.Body).Decode(&routers); err != nil {
		return err
	}
	fmt.Printf("Synced %d routers\n", len(routers))
	printRouters(routers)
	return nil
}
