package gemini

import (
	"encoding/json"

	"github.com/debaite/debaite/provider"
)

// jsonResponse covers the output shapes the Gemini CLI emits: the CLI's own
// {"response": ...} wrapper and the traditional API candidates format.
type jsonResponse struct {
	Response string `json:"response,omitempty"`
	Text     string `json:"text,omitempty"`

	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates,omitempty"`

	Stats *struct {
		Models map[string]json.RawMessage `json:"models,omitempty"`
	} `json:"stats,omitempty"`
}

// ParseJSON extracts the response text from Gemini CLI JSON output. Output
// that isn't valid JSON is passed through as-is, since older CLI versions
// print plain text.
func ParseJSON(data string) *provider.Response {
	var raw jsonResponse
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return &provider.Response{Content: data, Raw: data}
	}

	resp := &provider.Response{Raw: data}
	switch {
	case raw.Response != "":
		resp.Content = raw.Response
	case raw.Text != "":
		resp.Content = raw.Text
	case len(raw.Candidates) > 0:
		for _, part := range raw.Candidates[0].Content.Parts {
			resp.Content += part.Text
		}
	default:
		resp.Content = data
	}

	if raw.Stats != nil {
		for model := range raw.Stats.Models {
			resp.Model = model
			break
		}
	}
	return resp
}
