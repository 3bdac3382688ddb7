package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SyntaxError is a failed strict parse of a candidate text.
type SyntaxError struct {
	Stage    Stage    `json:"stage"`
	Position Position `json:"position"`
	Message  string   `json:"message"`
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s at %s", e.Stage, e.Message, e.Position)
}

// ParseStrict parses text with the standard JSON grammar and performs no
// repair. Numbers are kept as json.Number. Trailing non-whitespace after the
// top-level value is an error. A failure is always a *SyntaxError tagged
// with stage.
func ParseStrict(text string, stage Stage) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, newSyntaxError(text, stage, err)
	}

	if rest := skipSpace(text, int(dec.InputOffset())); rest < len(text) {
		return nil, &SyntaxError{
			Stage:    stage,
			Position: positionAt(text, int64(rest)),
			Message:  "unexpected data after top-level value",
		}
	}
	return value, nil
}

func newSyntaxError(text string, stage Stage, err error) *SyntaxError {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		// Offset counts the offending byte itself.
		return &SyntaxError{Stage: stage, Position: positionAt(text, syntaxErr.Offset-1), Message: syntaxErr.Error()}
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return &SyntaxError{Stage: stage, Position: positionAt(text, int64(len(text))), Message: "unexpected end of input"}
	default:
		return &SyntaxError{Stage: stage, Position: positionAt(text, 0), Message: err.Error()}
	}
}

// positionAt converts the byte offset of a character into its 1-based line
// and column.
func positionAt(text string, offset int64) Position {
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	if offset < 0 {
		offset = 0
	}
	line, col := 1, 1
	for i := int64(0); i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return Position{Offset: offset, Line: line, Column: col}
}
