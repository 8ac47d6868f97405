// Command horus-introspect is a thin CLI that polls a running horusd
// process's introspection endpoint and prints a one-shot snapshot of its
// nodes and topics. It is not a dashboard: no refresh loop, no TUI, just a
// formatted read of the same JSON the HTTP server returns.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

type nodeView struct {
	Name             string   `json:"name"`
	Priority         int      `json:"priority"`
	State            string   `json:"state"`
	Crashed          bool     `json:"crashed"`
	UptimeNs         int64    `json:"uptime_ns"`
	PublishedTopics  []string `json:"published_topics"`
	SubscribedTopics []string `json:"subscribed_topics"`
}

type topicView struct {
	Name         string `json:"name"`
	TypeID       int    `json:"type_id"`
	Subscribers  int    `json:"subscribers"`
	HasPublisher bool   `json:"has_publisher"`
}

func main() {
	addr := flag.String("addr", "http://127.0.0.1:7760", "horusd introspection server base URL")
	flag.Parse()

	client := resty.New().
		SetTimeout(3 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(1 * time.Second)

	var nodes struct {
		Nodes []nodeView `json:"nodes"`
	}
	if err := fetchJSON(client, *addr+"/nodes", &nodes); err != nil {
		fmt.Fprintln(os.Stderr, "horus-introspect:", err)
		os.Exit(1)
	}

	var topics struct {
		Topics []topicView `json:"topics"`
	}
	if err := fetchJSON(client, *addr+"/topics", &topics); err != nil {
		fmt.Fprintln(os.Stderr, "horus-introspect:", err)
		os.Exit(1)
	}

	fmt.Printf("NODES (%d)\n", len(nodes.Nodes))
	for _, n := range nodes.Nodes {
		crashed := ""
		if n.Crashed {
			crashed = " CRASHED"
		}
		fmt.Printf("  %-20s priority=%-3d state=%-12s uptime=%-10s%s\n",
			n.Name, n.Priority, n.State, time.Duration(n.UptimeNs), crashed)
	}

	fmt.Printf("\nTOPICS (%d)\n", len(topics.Topics))
	for _, t := range topics.Topics {
		fmt.Printf("  %-20s type=%-3d subscribers=%-3d publisher=%v\n",
			t.Name, t.TypeID, t.Subscribers, t.HasPublisher)
	}
}

// fetchJSON retries transient failures a couple of times before giving up —
// a horusd process restarting its introspection server mid-poll shouldn't
// fail the whole CLI invocation.
func fetchJSON(client *resty.Client, url string, out any) error {
	resp, err := client.R().SetResult(out).Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode(), resp.Body())
	}
	return nil
}
