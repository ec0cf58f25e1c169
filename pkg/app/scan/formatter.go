package scan

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// separator is the fixed delimiter line between candidate blocks.
const separator = "---------------------------------------"

// FormatOutput formats scan results according to the output format.
func FormatOutput(response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(response)
	case "yaml":
		return formatYAML(response)
	case "text":
		return formatText(response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatText prints each candidate as a textual block between separator
// lines, with the envelope fields rendered when the window parsed.
func formatText(response *Response) error {
	if len(response.Candidates) == 0 {
		fmt.Printf("No vault candidates found (%d root(s), %d segment(s) scanned).\n",
			response.Stats.Roots, response.Stats.Segments)
		return nil
	}

	for _, cand := range response.Candidates {
		fmt.Println(separator)
		fmt.Println("at:  ", cand.Source)
		switch {
		case cand.Parsed():
			fmt.Println("Found a vault:")
		case cand.RawFallback:
			fmt.Println("Possibly found a vault (raw byte match):")
		default:
			fmt.Println("Probably found a vault:")
		}
		if cand.LowConfidence {
			fmt.Println("(record failed its checksum; payload may be damaged)")
		}
		fmt.Println()
		fmt.Println(cand.Text)
		if cand.Parsed() {
			fmt.Println()
			fmt.Printf("data: %s\n", cand.Fields.Data)
			fmt.Printf("iv:   %s\n", cand.Fields.IV)
			fmt.Printf("salt: %s\n", cand.Fields.Salt)
		}
		fmt.Println()
		fmt.Println(separator)
		fmt.Println()
	}

	fmt.Printf("Found %d candidate(s) in %v\n", len(response.Candidates), response.ScanTime)
	return nil
}

// formatJSON formats results as JSON.
func formatJSON(response *Response) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats results as YAML.
func formatYAML(response *Response) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(response)
}
