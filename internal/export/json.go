package export

import (
	"encoding/json"
	"io"

	"github.com/debaite/debaite/internal/core"
)

// JSONExporter exports debates to JSON format.
type JSONExporter struct{}

// Export writes the debate record as indented JSON.
func (e *JSONExporter) Export(record *core.DebateRecord, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(record)
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return "json"
}
