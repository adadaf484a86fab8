package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrintJSON outputs any value as formatted JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatJSON returns formatted JSON as a string.
func FormatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PrintJSONError outputs an error as JSON.
func PrintJSONError(w io.Writer, err error, exitCode int) {
	PrintJSON(w, map[string]interface{}{
		"error":    err.Error(),
		"exitCode": exitCode,
	})
}

// BatchDiscoverResult represents the result of a batch discovery run.
type BatchDiscoverResult struct {
	TotalURLs int              `json:"totalUrls"`
	Found     int              `json:"found"`
	Failed    int              `json:"failed"`
	Results   []DiscoverResult `json:"results"`
	Duration  int64            `json:"durationMs"`
}

// PrintBatchDiscoverResult outputs batch discovery results.
func PrintBatchDiscoverResult(w io.Writer, result *BatchDiscoverResult, jsonOutput bool) {
	if jsonOutput {
		PrintJSON(w, result)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "WAU Batch Discovery")
	fmt.Fprintln(w, "───────────────────")
	fmt.Fprintf(w, "Total:   %d URLs\n", result.TotalURLs)
	fmt.Fprintf(w, "Found:   %d\n", result.Found)
	fmt.Fprintf(w, "Failed:  %d\n", result.Failed)
	fmt.Fprintf(w, "Time:    %dms\n", result.Duration)

	fmt.Fprintln(w)
	for _, r := range result.Results {
		if r.ExitCode != 0 || r.Form == nil {
			fmt.Fprintf(w, "  ✗ %s\n", r.URL)
			if r.Error != "" {
				fmt.Fprintf(w, "      %s\n", r.Error)
			}
			continue
		}
		fmt.Fprintf(w, "  ✓ %s  %s\n", r.URL, r.Form.Name)
	}
}
