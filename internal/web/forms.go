package web

// forms.go decodes and validates the small forms posted by the file card
// widgets. Struct tags carry the rules; handlers only see validated values.

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

var errInvalidForm = errors.New("invalid form")

// fileRef is the {fileID} path parameter.
type fileRef struct {
	FileID string `validate:"required,uuid"`
}

// toggleForm is a checkbox widget. An absent "on" field means unchecked.
type toggleForm struct {
	On bool
}

// convertForm is the conversion radio.
type convertForm struct {
	Format string `validate:"required,conversion"`
}

// columnsMarker is posted by the column picker on every submit. Browsers
// send nothing for a multi-select with no option chosen, so the marker is
// how an empty selection is told apart from "all columns".
const columnsMarker = "columns_submitted"

// columnsForm is the column multi-select. A nil Columns selects every column.
type columnsForm struct {
	Columns []string `validate:"omitempty,max=1000,dive,max=512"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("conversion", isConversionChoice)
	return v
}

func isConversionChoice(fl validator.FieldLevel) bool {
	_, err := core.ParseChoice(fl.Field().String())
	return err == nil
}

// check validates v and turns the first failure into an error MapError
// understands.
func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	fe := verrs[0]
	if fe.Tag() == "conversion" {
		return fmt.Errorf("unknown conversion format: %q", fe.Value())
	}
	return fmt.Errorf("%w: %s failed %q", errInvalidForm, fe.Namespace(), fe.Tag())
}

// withFileID rejects requests whose {fileID} is not a uuid.
func (s *Server) withFileID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := fileRef{FileID: chi.URLParam(r, "fileID")}
		if err := s.check(ref); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", core.ErrFileNotFound, err), http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) decodeToggle(r *http.Request) (toggleForm, error) {
	if err := r.ParseForm(); err != nil {
		return toggleForm{}, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	raw := strings.TrimSpace(r.PostForm.Get("on"))
	switch strings.ToLower(raw) {
	case "":
		return toggleForm{}, nil
	case "on":
		return toggleForm{On: true}, nil
	}
	on, err := strconv.ParseBool(raw)
	if err != nil {
		return toggleForm{}, fmt.Errorf("%w: on=%q is not a boolean", errInvalidForm, raw)
	}
	return toggleForm{On: on}, nil
}

func (s *Server) decodeConvert(r *http.Request) (core.ConversionChoice, error) {
	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	form := convertForm{Format: r.PostForm.Get("format")}
	if err := s.check(form); err != nil {
		return "", err
	}
	return core.ParseChoice(form.Format)
}

func (s *Server) decodeColumns(r *http.Request) ([]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	var form columnsForm
	if vals, ok := r.PostForm["columns"]; ok {
		form.Columns = append([]string{}, vals...)
	} else if r.PostForm.Get(columnsMarker) != "" {
		form.Columns = []string{}
	}
	if err := s.check(form); err != nil {
		return nil, err
	}
	return form.Columns, nil
}
