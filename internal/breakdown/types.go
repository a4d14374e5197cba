// Package breakdown turns a goal into a model-generated task plan: it builds
// the prompt, talks to the model backend, and parses what comes back.
package breakdown

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Breakdown is the parsed plan returned by the model, before persistence.
type Breakdown struct {
	Tasks []TaskSpec

	// TotalEstimatedHours is nil when the field is absent or not a number.
	TotalEstimatedHours *float64
	HasTotalEstimate    bool // the response carried the field at all
	SuggestedTimeline   string
}

// TaskSpec is one task as proposed by the model. Every field is optional;
// malformed values decode as absent rather than failing the whole response.
type TaskSpec struct {
	Title          *string
	Description    *string
	EstimatedHours *float64
	Priority       string
	Dependencies   []DependencyRef
	StartDate      string
	EndDate        string
}

// DependencyKind tags how a dependency refers to its target.
type DependencyKind int

const (
	DependencyUnknown DependencyKind = iota
	DependencyByTitle
	DependencyByIndex
)

// DependencyRef points at a sibling task either by exact title or by
// zero-based position in the breakdown.
type DependencyRef struct {
	Kind  DependencyKind
	Title string
	Index int
}

// ByTitle builds a title reference.
func ByTitle(title string) DependencyRef {
	return DependencyRef{Kind: DependencyByTitle, Title: title}
}

// ByIndex builds a positional reference.
func ByIndex(i int) DependencyRef {
	return DependencyRef{Kind: DependencyByIndex, Index: i}
}

// UnmarshalJSON decodes a string as ByTitle and an integral number as
// ByIndex. Any other shape becomes DependencyUnknown; it never errors.
func (d *DependencyRef) UnmarshalJSON(data []byte) error {
	*d = DependencyRef{}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	switch val := v.(type) {
	case string:
		*d = ByTitle(val)
	case json.Number:
		if i, err := strconv.Atoi(val.String()); err == nil {
			*d = ByIndex(i)
		}
	}
	return nil
}

// rawTask mirrors the wire shape of a task with every field left undecoded
// so that one bad field cannot poison its siblings.
type rawTask struct {
	Title          json.RawMessage `json:"title"`
	Description    json.RawMessage `json:"description"`
	EstimatedHours json.RawMessage `json:"estimated_hours"`
	Priority       json.RawMessage `json:"priority"`
	Dependencies   json.RawMessage `json:"dependencies"`
	StartDate      json.RawMessage `json:"start_date"`
	EndDate        json.RawMessage `json:"end_date"`
}

func decodeTaskSpec(data json.RawMessage) TaskSpec {
	var raw rawTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return TaskSpec{}
	}

	ts := TaskSpec{
		Title:          optionalString(raw.Title),
		Description:    optionalString(raw.Description),
		EstimatedHours: optionalNumber(raw.EstimatedHours),
		StartDate:      stringOrEmpty(raw.StartDate),
		EndDate:        stringOrEmpty(raw.EndDate),
	}
	if p := optionalString(raw.Priority); p != nil {
		ts.Priority = *p
	}

	var deps []json.RawMessage
	if !isAbsent(raw.Dependencies) && json.Unmarshal(raw.Dependencies, &deps) == nil {
		for _, dep := range deps {
			var ref DependencyRef
			_ = ref.UnmarshalJSON(dep)
			ts.Dependencies = append(ts.Dependencies, ref)
		}
	}
	return ts
}

func isAbsent(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}

func optionalString(data json.RawMessage) *string {
	if isAbsent(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}

func stringOrEmpty(data json.RawMessage) string {
	if s := optionalString(data); s != nil {
		return *s
	}
	return ""
}

// optionalNumber accepts JSON numbers and numeric strings.
func optionalNumber(data json.RawMessage) *float64 {
	if isAbsent(data) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return &f
	}
	if s := optionalString(data); s != nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64); err == nil {
			return &f
		}
	}
	return nil
}
