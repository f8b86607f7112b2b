package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// TableFormatter helps format tabular output
type TableFormatter struct {
	writer *tabwriter.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	return &TableFormatter{writer: tw}
}

// Header writes the table header
func (t *TableFormatter) Header(columns ...string) {
	fmt.Fprintln(t.writer, strings.Join(columns, "\t"))
	fmt.Fprintln(t.writer, strings.Repeat("-", 72))
}

// Row writes a table row
func (t *TableFormatter) Row(values ...string) {
	fmt.Fprintln(t.writer, strings.Join(values, "\t"))
}

// Flush writes the buffered table to output
func (t *TableFormatter) Flush() {
	t.writer.Flush()
}

// OutputResults formats and outputs results based on the specified format
func OutputResults(w io.Writer, format string, data interface{}) error {
	switch OutputFormat(format) {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)

	case FormatYAML:
		yamlData, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(yamlData))
		return nil

	case FormatText:
		fmt.Fprintf(w, "%v\n", data)
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteProject prints a project as a header and a page table
func WriteProject(w io.Writer, p *models.Project) {
	fmt.Fprintf(w, "%s (%s)\n", p.Title, p.ID)
	fmt.Fprintf(w, "Status: %s, %d page(s)\n", p.Status, len(p.Pages))
	if p.Prompt != "" {
		fmt.Fprintf(w, "Prompt: %s\n", p.Prompt)
	}
	if len(p.Pages) == 0 {
		return
	}

	fmt.Fprintln(w)
	table := NewTableFormatter(w)
	table.Header("PAGE", "STYLE", "CHARACTERS", "TEXT")
	for _, page := range p.Pages {
		table.Row(
			fmt.Sprintf("%d", page.Number),
			page.ImageStyle,
			models.FormatCharacterIDs(page.CharacterIDs),
			TruncateString(strings.ReplaceAll(page.ScriptText, "\n", " "), 48),
		)
	}
	table.Flush()
}

// TruncateString truncates a string to the specified length
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
