package client

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

func addRemote(cmd *cli.Command, client *model.Client) error {
	data, err := json.Marshal(client)
	if err != nil {
		return err
	}

	req, err := newRequest(cmd, http.MethodPost, "/api/clients", bytes.NewReader(data))
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
	if err := json.NewDecoder(resp.Body).Decode(client); err != nil {
		return err
	}

	fmt.Printf("Client created: %s (ID: %s)\n", client.Name, client.ID)
	return nil
}

func listRemote(cmd *cli.Command) error {
	params := url.Values{}
	if v := cmd.GetString("query"); v != "" {
		params.Set("q", v)
	}
	if v := cmd.GetString("router"); v != "" {
		params.Set("router", v)
	}
	if v := cmd.GetString("status"); v != "" {
		params.Set("status", v)
	}
	if v := cmd.GetString("expiration"); v != "" {
		params.Set("expiration", v)
	}

	path := "/api/clients"
	if len(params) > 0 {
		path += "?" + params.Encode()
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

	var clients []model.Client
	if err := json.NewDecoder(resp.Body).Decode(&clients); err != nil {
		return err
	}
	printClients(clients)
	return nil
}

func getRemote(cmd *cli.Command, id string) error {
	req, err := newRequest(cmd, http.MethodGet, "/api/clients/"+url.PathEscape(id), nil)
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

	var client model.Client
	if err := json.NewDecoder(resp.Body).Decode(&client); err != nil {
		return err
	}
	printClient(&client)
	return nil
}

func updateRemote(cmd *cli.Command, id string, updates *model.Client) error {
	// Fetch, merge, and put back so unset flags keep current values
	req, err := newRequest(cmd, http.MethodGet, "/api/clients/"+url.PathEscape(id), nil)
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
	var client model.Client
	if err := json.NewDecoder(resp.Body).Decode(&client); err != nil {
		return err
	}

	applyUpdates(&client, updates)

	data, err := json.Marshal(client)
	if err != nil {
		return err
	}
	req, err = newRequest(cmd, http.MethodPut, "/api/clients/"+url.PathEscape(id), bytes.NewReader(data))
	if err != nil {
		return err
	}
	putResp, err := httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusOK {
		return serverError(putResp)
	}

	fmt.Printf("Client updated: %s\n", client.Name)
	return nil
}

func deleteRemote(cmd *cli.Command, id string) error {
	req, err := newRequest(cmd, http.MethodDelete, "/api/clients/"+url.PathEscape(id), nil)
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

	fmt.Println("Client deleted")
	return nil
}
