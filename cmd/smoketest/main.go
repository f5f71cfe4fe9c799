package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cryptocrystian/pravado-gateway/client"
)

// Manual end-to-end probe against a locally running gateway.
func main() {

	cl, version, err := client.New("http://localhost:8080", 5*time.Second)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("Connected to gateway version %s\n", version)

	ctx := context.Background()

	start := time.Now()
	data, err := cl.Get(ctx, "/api/agents")
	fmt.Printf("Agents request took: %v\n", time.Since(start))
	if err != nil {
		log.Fatalln(err)
	}

	var agents struct {
		Agents []json.RawMessage `json:"agents"`
	}
	if err := json.Unmarshal(data, &agents); err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("Gateway returned %d agents\n", len(agents.Agents))

	// PR routes echo the backend payload raw, so skip the envelope.
	raw, status, err := cl.Raw(ctx, http.MethodGet, "/api/pr/journalists?limit=3", nil)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("Journalists (%d): %s\n", status, raw)
}
