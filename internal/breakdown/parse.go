package breakdown

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports model output that could not be decoded or lacks the
// required "tasks" field.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid model response: %s: %v", e.Reason, e.Err)
	}
	return "invalid model response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// StripFences removes surrounding whitespace and markdown code fences. Each
// fence is stripped on its own, whether or not its counterpart is present.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// Parse decodes model output into a Breakdown.
func Parse(raw string) (*Breakdown, error) {
	cleaned := StripFences(raw)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		return nil, &ParseError{Reason: "not a JSON object", Err: err}
	}

	tasksRaw, ok := top["tasks"]
	if !ok {
		return nil, &ParseError{Reason: "response missing 'tasks' field"}
	}

	// json.Unmarshal leaves a nil slice for null, which is not a list either.
	var entries []json.RawMessage
	if err := json.Unmarshal(tasksRaw, &entries); err != nil || entries == nil {
		return nil, &ParseError{Reason: "'tasks' is not a list", Err: err}
	}

	b := &Breakdown{Tasks: make([]TaskSpec, 0, len(entries))}
	for _, entry := range entries {
		b.Tasks = append(b.Tasks, decodeTaskSpec(entry))
	}

	if total, ok := top["total_estimated_hours"]; ok {
		b.HasTotalEstimate = true
		b.TotalEstimatedHours = optionalNumber(total)
	}
	if timeline, ok := top["suggested_timeline"]; ok {
		b.SuggestedTimeline = stringOrEmpty(timeline)
	}
	return b, nil
}
