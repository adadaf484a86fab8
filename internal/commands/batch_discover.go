package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wau-ai/wau-cli/internal/output"
)

// BatchEntry is one agent to discover.
type BatchEntry struct {
	URL      string `json:"url" yaml:"url"`
	Direct   bool   `json:"direct,omitempty" yaml:"direct,omitempty"`
	CardPath string `json:"cardPath,omitempty" yaml:"cardPath,omitempty"`
}

// Batch discover command flags
var (
	batchParallel int
	batchDelay    int
	batchFailFast bool
	batchDirect   bool
)

var batchDiscoverCmd = &cobra.Command{
	Use:   "batch-discover <file>",
	Short: "Discover multiple agents from a JSON or YAML file",
	Long: `Batch discovery for many agents.

The input file can be either:

  1. Simple array of URLs:
     ["https://agent1.example.com", "https://agent2.example.com"]

  2. Array of objects, optionally fetching directly from the agent:
     [
       {"url": "https://agent1.example.com"},
       {"url": "https://agent2.example.com", "direct": true, "cardPath": "/card.json"}
     ]

YAML files with the same shape are accepted.

Examples:
  wau batch-discover agents.json
  wau batch-discover agents.yaml --parallel 5
  wau batch-discover agents.json --json
  wau batch-discover agents.json --fail-fast`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchDiscover,
}

func init() {
	batchDiscoverCmd.Flags().IntVar(&batchParallel, "parallel", 1, "Number of parallel discoveries")
	batchDiscoverCmd.Flags().IntVar(&batchDelay, "delay", 0, "Delay between requests in milliseconds")
	batchDiscoverCmd.Flags().BoolVar(&batchFailFast, "fail-fast", false, "Stop on first failure")
	batchDiscoverCmd.Flags().BoolVar(&batchDirect, "direct", false, "Fetch every card from the agent instead of the registry")

	rootCmd.AddCommand(batchDiscoverCmd)
}

func runBatchDiscover(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return &ExitError{Code: ExitValidation, Err: fmt.Errorf("failed to read file: %w", err)}
	}

	entries, err := parseBatchInput(data)
	if err != nil {
		return &ExitError{Code: ExitValidation, Err: err}
	}
	if len(entries) == 0 {
		return &ExitError{Code: ExitValidation, Err: errors.New("no URLs in file")}
	}
	if batchDirect {
		for i := range entries {
			entries[i].Direct = true
		}
	}

	startTime := time.Now()
	results := runBatchDiscovery(cmd.Context(), entries, batchParallel, batchDelay, batchFailFast)
	duration := time.Since(startTime)

	found := 0
	failed := 0
	for _, r := range results {
		if r.ExitCode != ExitOK {
			failed++
		} else {
			found++
		}
	}

	batchResult := &output.BatchDiscoverResult{
		TotalURLs: len(entries),
		Found:     found,
		Failed:    failed,
		Results:   results,
		Duration:  duration.Milliseconds(),
	}
	output.PrintBatchDiscoverResult(cmd.OutOrStdout(), batchResult, GetJSONOutput())

	if failed > 0 {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%d agent(s) failed discovery", failed)}
	}
	return nil
}

// parseBatchInput accepts an array of URLs or an array of entry objects,
// as JSON or YAML.
func parseBatchInput(data []byte) ([]BatchEntry, error) {
	entries, ok, err := decodeBatch(json.Unmarshal, data)
	if !ok {
		entries, ok, err = decodeBatch(yaml.Unmarshal, data)
	}
	if !ok {
		return nil, fmt.Errorf("failed to parse input: expected array of URLs or array of {url, direct, cardPath} objects")
	}
	return entries, err
}

// decodeBatch reports ok when data has one of the accepted shapes.
func decodeBatch(unmarshal func([]byte, any) error, data []byte) ([]BatchEntry, bool, error) {
	var entries []BatchEntry
	if err := unmarshal(data, &entries); err == nil {
		for i := range entries {
			entries[i].URL = strings.TrimSpace(entries[i].URL)
			if entries[i].URL == "" {
				return nil, true, fmt.Errorf("entry %d: missing URL", i+1)
			}
		}
		return entries, true, nil
	}

	var urls []string
	if err := unmarshal(data, &urls); err != nil {
		return nil, false, nil
	}
	entries = make([]BatchEntry, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			entries = append(entries, BatchEntry{URL: u})
		}
	}
	return entries, true, nil
}

// runBatchDiscovery discovers entries sequentially or with up to parallel
// workers. With failFast, no new discovery starts after the first failure
// and skipped entries are left out of the results.
func runBatchDiscovery(ctx context.Context, entries []BatchEntry, parallel int, delayMs int, failFast bool) []output.DiscoverResult {
	results := make([]output.DiscoverResult, len(entries))
	done := make([]bool, len(entries))
	delay := time.Duration(delayMs) * time.Millisecond

	if parallel <= 1 {
		for i, entry := range entries {
			if ctx.Err() != nil {
				break
			}
			results[i] = *discoverAgent(ctx, entry.URL, entry.Direct, entry.CardPath)
			done[i] = true
			if failFast && results[i].ExitCode != ExitOK {
				break
			}
			if delay > 0 && i < len(entries)-1 {
				sleep(ctx, delay)
			}
		}
		return collect(results, done)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, parallel)
	stopChan := make(chan struct{})
	stopped := false

dispatch:
	for i, entry := range entries {
		select {
		case <-stopChan:
			break dispatch
		case <-ctx.Done():
			break dispatch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, e BatchEntry) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := discoverAgent(ctx, e.URL, e.Direct, e.CardPath)

			mu.Lock()
			results[idx] = *result
			done[idx] = true
			if failFast && result.ExitCode != ExitOK && !stopped {
				stopped = true
				close(stopChan)
			}
			mu.Unlock()
		}(i, entry)

		if delay > 0 {
			sleep(ctx, delay)
		}
	}

	wg.Wait()
	return collect(results, done)
}

func collect(results []output.DiscoverResult, done []bool) []output.DiscoverResult {
	out := make([]output.DiscoverResult, 0, len(results))
	for i, r := range results {
		if done[i] {
			out = append(out, r)
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
