package core

import (
	"errors"
	"testing"
)

func TestFileState_ConvertReset(t *testing.T) {
	tests := []struct {
		name      string
		change    func(*FileState)
		wantReset bool
	}{
		{"toggle clean", func(s *FileState) { s.SetClean(true) }, true},
		{"same clean value", func(s *FileState) { s.SetClean(false) }, false},
		{"trigger", func(s *FileState) { _ = s.Trigger(ActionImpute) }, true},
		{"select columns", func(s *FileState) { s.SelectColumns([]string{"a"}) }, true},
		{"visualize", func(s *FileState) { s.SetVisualize(true) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultFileState()
			if err := st.RequestConversion(Excel); err != nil {
				t.Fatalf("RequestConversion: %v", err)
			}
			tt.change(&st)
			if st.Convert == tt.wantReset {
				t.Errorf("Convert = %v after %s, want %v", st.Convert, tt.name, !tt.wantReset)
			}
		})
	}
}

func TestFileState_Trigger(t *testing.T) {
	st := DefaultFileState()
	if err := st.Trigger("shuffle"); err == nil {
		t.Error("Trigger(shuffle) succeeded, want error")
	}

	for i := 0; i < maxActions; i++ {
		if err := st.Trigger(ActionDedupe); err != nil {
			t.Fatalf("Trigger #%d: %v", i, err)
		}
	}
	if err := st.Trigger(ActionDedupe); !errors.Is(err, ErrTooManyActions) {
		t.Errorf("Trigger past limit = %v, want ErrTooManyActions", err)
	}
}

func TestFileState_SelectColumnsCopies(t *testing.T) {
	cols := []string{"a", "b"}
	st := DefaultFileState()
	st.SelectColumns(cols)
	cols[0] = "z"
	if st.Columns[0] != "a" {
		t.Error("SelectColumns kept a reference to the caller's slice")
	}

	st.SelectColumns(nil)
	if st.Columns != nil {
		t.Errorf("Columns = %v, want nil for all columns", st.Columns)
	}
}

func TestFileState_RequestConversion(t *testing.T) {
	st := DefaultFileState()
	if err := st.RequestConversion("pdf"); err == nil {
		t.Error("RequestConversion(pdf) succeeded")
	}
	if st.Convert {
		t.Error("failed RequestConversion set Convert")
	}
}
