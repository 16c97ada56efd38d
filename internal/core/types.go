package core

import (
	"fmt"
	"time"
)

// maxActions bounds the clean-action log kept per file.
const maxActions = 100

// FileState holds the widget selections for one file. It is the only state
// carried between interactions; every run rebuilds the table from the
// uploaded bytes and this state.
type FileState struct {
	// Clean enables the cleaning controls. Recorded actions and the column
	// selection only apply while it is on.
	Clean bool `json:"clean"`

	// Actions is the ordered log of triggered clean operations.
	Actions []CleanAction `json:"actions"`

	// Columns is the chosen projection. Nil means every column.
	Columns []string `json:"columns"`

	Visualize bool             `json:"visualize"`
	Format    ConversionChoice `json:"format"`

	// Convert is set by the convert button and cleared by any change that
	// affects the table, so a download always matches what was converted.
	Convert bool `json:"convert"`
}

// DefaultFileState is the state a freshly uploaded file starts with.
func DefaultFileState() FileState {
	return FileState{Format: CSV}
}

// SetClean toggles the cleaning controls.
func (s *FileState) SetClean(on bool) {
	if s.Clean != on {
		s.Convert = false
	}
	s.Clean = on
}

// Trigger records a clean action to replay on every subsequent run.
func (s *FileState) Trigger(a CleanAction) error {
	switch a {
	case ActionDedupe, ActionImpute:
	default:
		return fmt.Errorf("unknown clean action: %q", a)
	}
	if len(s.Actions) >= maxActions {
		return ErrTooManyActions
	}
	s.Actions = append(s.Actions, a)
	s.Convert = false
	return nil
}

// SelectColumns sets the projection. A nil slice selects every column; an
// empty non-nil slice selects none.
func (s *FileState) SelectColumns(cols []string) {
	if cols != nil {
		cols = append([]string{}, cols...)
	}
	s.Columns = cols
	s.Convert = false
}

// SetVisualize toggles the chart. The table is unaffected.
func (s *FileState) SetVisualize(on bool) {
	s.Visualize = on
}

// RequestConversion picks the export format and enables the download.
func (s *FileState) RequestConversion(c ConversionChoice) error {
	if _, ok := FormatFor(c); !ok {
		return fmt.Errorf("unknown conversion format: %q", c)
	}
	s.Format = c
	s.Convert = true
	return nil
}

// clone returns a deep copy safe to hand to a pipeline run.
func (s FileState) clone() FileState {
	out := s
	out.Actions = append([]CleanAction(nil), s.Actions...)
	if s.Columns != nil {
		out.Columns = append([]string{}, s.Columns...)
	}
	return out
}

// HistoryEntry records a state change made to a file, shown on its card.
type HistoryEntry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}
