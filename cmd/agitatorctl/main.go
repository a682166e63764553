// Command agitatorctl is a minimal HTTP client for agitatord's control
// API: start a recipe, send pause/resume/confirm/skip/restart commands, and
// print current status.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8787", "agitatord API base URL")
	token := flag.String("token", os.Getenv("AGITATOR_TOKEN"), "bearer token")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: agitatorctl [-addr url] [-token t] <status|start <recipe>|pause|resume|confirm|skip|restart>")
		os.Exit(2)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	var err error
	switch args[0] {
	case "status":
		err = get(client, *addr, *token, "/api/v1/status")
	case "start":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: agitatorctl start <recipe>")
			os.Exit(2)
		}
		err = postJSON(client, *addr, *token, "/api/v1/runs", map[string]string{"recipe": args[1]})
	case "pause":
		err = post(client, *addr, *token, "/api/v1/pause")
	case "resume":
		err = post(client, *addr, *token, "/api/v1/resume")
	case "confirm":
		err = post(client, *addr, *token, "/api/v1/confirm")
	case "skip":
		err = post(client, *addr, *token, "/api/v1/skip")
	case "restart":
		err = post(client, *addr, *token, "/api/v1/restart")
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func get(client *http.Client, addr, token, path string) error {
	req, err := http.NewRequest(http.MethodGet, addr+path, nil)
	if err != nil {
		return err
	}
	authorize(req, token)
	return do(client, req)
}

func post(client *http.Client, addr, token, path string) error {
	req, err := http.NewRequest(http.MethodPost, addr+path, nil)
	if err != nil {
		return err
	}
	authorize(req, token)
	return do(client, req)
}

func postJSON(client *http.Client, addr, token, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, addr+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	authorize(req, token)
	return do(client, req)
}

func do(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	fmt.Println(string(body))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
