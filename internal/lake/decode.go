package lake

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reason classifies a problem found in a single record.
type Reason string

const (
	ReasonMalformed       Reason = "malformed"
	ReasonMissingID       Reason = "missing_id"
	ReasonMissingName     Reason = "missing_name"
	ReasonInvalidLocation Reason = "invalid_location"
	ReasonMissingSpecies  Reason = "missing_species"
	ReasonDuplicateID     Reason = "duplicate_id"
)

// Skips reports whether records with this reason are dropped from the dataset.
// Missing species only produce a warning and the lake is kept with none.
func (r Reason) Skips() bool {
	return r != ReasonMissingSpecies
}

// Issue describes a problem with the record at Index in the source array.
type Issue struct {
	Index  int    `json:"index"`
	ID     ID     `json:"id,omitempty"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("record %d", i.Index)
	if i.ID != "" {
		s += fmt.Sprintf(" (id %s)", i.ID)
	}
	s += ": " + string(i.Reason)
	if i.Detail != "" {
		s += ": " + i.Detail
	}
	return s
}

// Dataset is the validated result of decoding a lake list.
type Dataset struct {
	Lakes  []Lake  `json:"lakes"`
	Issues []Issue `json:"issues,omitempty"`
}

// Skipped counts the records that were dropped. A record with several
// problems counts once.
func (d Dataset) Skipped() int {
	dropped := make(map[int]struct{})
	for _, is := range d.Issues {
		if is.Reason.Skips() {
			dropped[is.Index] = struct{}{}
		}
	}
	return len(dropped)
}

// Partial reports whether any source record was dropped.
func (d Dataset) Partial() bool {
	return d.Skipped() > 0
}

var (
	// ErrNotArray is returned when the document is not a JSON array.
	ErrNotArray = errors.New("dataset is not a JSON array")
	// ErrTrailingData is returned when anything but whitespace follows the array.
	ErrTrailingData = errors.New("unexpected data after dataset array")
)

// rawLake mirrors Lake with pointer fields so that absent keys are detectable.
type rawLake struct {
	ID       *ID              `json:"id"`
	Name     *string          `json:"name"`
	Species  *[]string        `json:"species"`
	Location *json.RawMessage `json:"location"`
}

// Decode reads a JSON array of lake records. Structurally invalid records are
// skipped and reported as issues; a document that is not an array is an error.
func Decode(r io.Reader) (Dataset, error) {
	var records []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Dataset{}, ErrNotArray
		}
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	if records == nil {
		// literal null
		return Dataset{}, ErrNotArray
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return Dataset{}, ErrTrailingData
	}

	ds := Dataset{Lakes: make([]Lake, 0, len(records))}
	seen := make(map[ID]int, len(records))

	for i, rec := range records {
		l, issues := decodeRecord(i, rec)
		ds.Issues = append(ds.Issues, issues...)
		if skipped(issues) {
			continue
		}

		if first, dup := seen[l.ID]; dup {
			ds.Issues = append(ds.Issues, Issue{
				Index:  i,
				ID:     l.ID,
				Reason: ReasonDuplicateID,
				Detail: fmt.Sprintf("first seen at record %d", first),
			})
			continue
		}

		seen[l.ID] = i
		ds.Lakes = append(ds.Lakes, l)
	}

	return ds, nil
}

func decodeRecord(i int, data json.RawMessage) (Lake, []Issue) {
	var raw rawLake
	if err := json.Unmarshal(data, &raw); err != nil {
		return Lake{}, []Issue{{Index: i, Reason: ReasonMalformed, Detail: err.Error()}}
	}

	var (
		l      Lake
		issues []Issue
	)

	if raw.ID != nil {
		l.ID = ID(strings.TrimSpace(string(*raw.ID)))
	}
	if l.ID == "" {
		issues = append(issues, Issue{Index: i, Reason: ReasonMissingID})
	}

	if raw.Name != nil {
		l.Name = *raw.Name
	}
	if strings.TrimSpace(l.Name) == "" {
		issues = append(issues, Issue{Index: i, ID: l.ID, Reason: ReasonMissingName})
	}

	loc, err := decodeLocation(raw.Location)
	if err != nil {
		issues = append(issues, Issue{Index: i, ID: l.ID, Reason: ReasonInvalidLocation, Detail: err.Error()})
	}
	l.Location = loc

	if raw.Species == nil || *raw.Species == nil {
		issues = append(issues, Issue{Index: i, ID: l.ID, Reason: ReasonMissingSpecies})
		l.Species = []string{}
	} else {
		l.Species = *raw.Species
	}

	return l, issues
}

func decodeLocation(raw *json.RawMessage) (Location, error) {
	if raw == nil {
		return Location{}, errors.New("missing")
	}

	var pair []float64
	if err := json.Unmarshal(*raw, &pair); err != nil {
		return Location{}, errors.New("must be an array of two numbers")
	}
	if len(pair) != 2 {
		return Location{}, fmt.Errorf("expected 2 coordinates, got %d", len(pair))
	}

	loc := Location{pair[0], pair[1]}
	if !loc.Valid() {
		return Location{}, fmt.Errorf("coordinates out of range: %v", pair)
	}

	return loc, nil
}

func skipped(issues []Issue) bool {
	for _, is := range issues {
		if is.Reason.Skips() {
			return true
		}
	}
	return false
}
