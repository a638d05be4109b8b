// seed_cases.go: standalone script that posts every case document in a
// directory to a Tradeoff server.
//
// Usage:
//
//	go run scripts/seed_cases.go -dir internal/model/testdata -api http://localhost:8700 -evaluate
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/MikeSquared-Agency/Tradeoff/internal/client"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

func main() {
	dir := flag.String("dir", "cases", "directory of .yaml, .yml or .json case documents")
	apiURL := flag.String("api", "http://localhost:8700", "Tradeoff API base URL")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	evaluate := flag.Bool("evaluate", false, "evaluate each case after creating it")
	dryRun := flag.Bool("dry-run", false, "validate cases without posting")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read dir: %v", err)
	}

	var cases []*model.Case
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json") {
			continue
		}
		c, err := model.Load(filepath.Join(*dir, e.Name()))
		if err != nil {
			log.Printf("skip %s: %v", e.Name(), err)
			continue
		}
		cases = append(cases, c)
	}
	log.Printf("loaded %d cases from %s", len(cases), *dir)

	if *dryRun {
		for i, c := range cases {
			fmt.Printf("[%d] %s (%d options, %d scenarios, %d dependencies)\n",
				i+1, c.Name, len(c.Options), len(c.Scenarios), len(c.Dependencies))
		}
		return
	}

	ctx := context.Background()
	cl := client.NewHTTPClient(*apiURL, "", *clientID)
	created, skipped := 0, 0
	for _, c := range cases {
		rec, err := cl.CreateCase(ctx, c)
		if err != nil {
			log.Printf("skip %q: %v", c.Name, err)
			skipped++
			continue
		}
		created++
		if !*evaluate {
			continue
		}
		if _, err := cl.Evaluate(ctx, rec.ID); err != nil {
			log.Printf("evaluate %q: %v", c.Name, err)
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}
