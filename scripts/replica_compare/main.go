// Command replica_compare checks two ledger nodes for drift. Because every
// step is deterministic, replicas that applied the same step sequence must
// expose identical event journals; any divergence is a bug, not a race.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"
)

type journalEvent struct {
	Seq       uint64   `json:"seq"`
	Kind      string   `json:"kind"`
	RecordIDs []string `json:"record_ids"`
	Actor     string   `json:"actor"`
	OldStatus string   `json:"old_status,omitempty"`
	NewStatus string   `json:"new_status,omitempty"`
}

type envelope struct {
	Data []journalEvent `json:"data"`
}

func main() {
	var (
		primaryBase string
		replicaBase string
		token       string
		after       uint64
		batch       int
		timeout     time.Duration
	)

	flag.StringVar(&primaryBase, "primary", "http://localhost:8080", "primary node base URL")
	flag.StringVar(&replicaBase, "replica", "http://localhost:8081", "replica node base URL")
	flag.StringVar(&token, "token", os.Getenv("LEDGER_TOKEN"), "bearer token for both nodes")
	flag.Uint64Var(&after, "after", 0, "start comparing after this sequence number")
	flag.IntVar(&batch, "batch", 500, "events per fetch")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	var compared, divergent int
	cursor := after
	for {
		primary, err := fetchEvents(client, primaryBase, token, cursor, batch)
		if err != nil {
			log.Fatalf("fetch primary events: %v", err)
		}
		replica, err := fetchEvents(client, replicaBase, token, cursor, batch)
		if err != nil {
			log.Fatalf("fetch replica events: %v", err)
		}

		if len(primary) == 0 && len(replica) == 0 {
			break
		}
		if len(primary) != len(replica) {
			fmt.Printf("journal length differs after seq %d: primary=%d replica=%d\n", cursor, len(primary), len(replica))
			divergent++
			break
		}

		for i := range primary {
			compared++
			if !reflect.DeepEqual(primary[i], replica[i]) {
				divergent++
				fmt.Printf("[DIFF] seq %d\n  primary: %s\n  replica: %s\n",
					primary[i].Seq, format(primary[i]), format(replica[i]))
			}
		}
		cursor = primary[len(primary)-1].Seq
		if len(primary) < batch {
			break
		}
	}

	fmt.Printf("Compared %d events, %d divergent\n", compared, divergent)
	if divergent > 0 {
		os.Exit(1)
	}
}

func fetchEvents(client *http.Client, base, token string, after uint64, limit int) ([]journalEvent, error) {
	url := fmt.Sprintf("%s/api/v1/events?after=%d&limit=%d", strings.TrimRight(base, "/"), after, limit)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return env.Data, nil
}

func format(ev journalEvent) string {
	raw, _ := json.Marshal(ev)
	return string(raw)
}
