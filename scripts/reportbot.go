//go:build ignore

// Reportbot stands in for the companion bot process by posting periodic
// reports to /bot-status.
//
// Usage:
//
//	go run reportbot.go -url http://localhost:8000 -interval 30s
//	go run reportbot.go -url http://localhost:8000 -healthy=false -once
//
// Flip -healthy to watch the status page switch between CONNECTED and
// BOOTING UP.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type report struct {
	Healthy bool `json:"healthy"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8000", "Keepalive base URL")
		interval = flag.Duration("interval", 30*time.Second, "Time between reports")
		healthy  = flag.Bool("healthy", true, "Reported bot health")
		once     = flag.Bool("once", false, "Send one report and exit")
	)
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	if err := send(client, *baseURL, *healthy); err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}
	if *once {
		return
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			return
		case <-ticker.C:
			if err := send(client, *baseURL, *healthy); err != nil {
				fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
			}
		}
	}
}

func send(client *http.Client, baseURL string, healthy bool) error {
	body, err := json.Marshal(report{Healthy: healthy})
	if err != nil {
		return err
	}

	res, err := client.Post(baseURL+"/bot-status", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	reply, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", res.StatusCode, reply)
	}

	fmt.Printf("%s healthy=%t -> %s\n", time.Now().Format(time.RFC3339), healthy, bytes.TrimSpace(reply))
	return nil
}
