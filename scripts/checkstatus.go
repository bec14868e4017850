//go:build ignore

// Checkstatus queries a running instance and verifies that it has learned
// its public URL and that its pingers are succeeding.
//
// Usage:
//
//	go run checkstatus.go -url https://my-service.onrender.com
//	go run checkstatus.go -url http://localhost:8000 -expect-url http://localhost:8000
//
// Exit codes:
//
//	0 - Verification passed
//	2 - Instance unreachable or returned malformed JSON
//	3 - Public URL not detected or not the expected one
//	4 - A pinger has attempts but no successes
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"
)

type health struct {
	OK       bool    `json:"ok"`
	Uptime   float64 `json:"uptime"`
	Detected *string `json:"detected"`
	Bot      bool    `json:"bot"`
	TS       string  `json:"ts"`
}

type pingStats struct {
	Attempts int64 `json:"attempts"`
	OK       int64 `json:"ok"`
	Non200   int64 `json:"non_200"`
	Failed   int64 `json:"failed"`
}

type domainStatus struct {
	State               string `json:"state"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
}

type stats struct {
	Pings      map[string]pingStats    `json:"pings"`
	URLChanges int64                   `json:"url_changes"`
	BotReports int64                   `json:"bot_reports"`
	Domains    map[string]domainStatus `json:"domains"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "Keepalive base URL")
	expectURL := flag.String("expect-url", "", "Public URL the instance should have detected (optional)")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var h health
	if err := getJSON(client, *baseURL+"/health", &h); err != nil {
		fmt.Fprintf(os.Stderr, "health: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Uptime: %.0fs  Bot: %t\n", h.Uptime, h.Bot)

	if h.Detected == nil {
		fmt.Println("ERROR: public URL not detected yet")
		os.Exit(3)
	}
	fmt.Printf("Detected: %s\n", *h.Detected)

	if *expectURL != "" && *h.Detected != *expectURL {
		fmt.Printf("ERROR: detected %s, expected %s\n", *h.Detected, *expectURL)
		os.Exit(3)
	}

	var s stats
	if err := getJSON(client, *baseURL+"/stats", &s); err != nil {
		fmt.Fprintf(os.Stderr, "stats: %v\n", err)
		os.Exit(2)
	}

	kinds := make([]string, 0, len(s.Pings))
	for k := range s.Pings {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	failing := false
	fmt.Println("Pingers:")
	for _, k := range kinds {
		p := s.Pings[k]
		fmt.Printf("  %-8s attempts=%d ok=%d non200=%d failed=%d\n",
			k, p.Attempts, p.OK, p.Non200, p.Failed)
		if p.Attempts > 0 && p.OK == 0 {
			failing = true
		}
	}

	for d, ds := range s.Domains {
		fmt.Printf("  breaker %s -> %s (%d failures in a row)\n", d, ds.State, ds.ConsecutiveFailures)
	}

	if failing {
		fmt.Println("ERROR: at least one pinger has never succeeded")
		os.Exit(4)
	}

	fmt.Println("Verification passed.")
}

func getJSON(client *http.Client, url string, out any) error {
	res, err := client.Get(url)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
