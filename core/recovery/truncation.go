package recovery

import (
	"errors"
	"strings"
)

var (
	errNotTruncated    = errors.New("delimiters are balanced, reply is not truncated")
	errNoElementBounds = errors.New("no complete element to cut at")
)

// RecoverTruncation rebuilds a candidate whose array was cut off before it
// was closed. The text after the last complete top-level element is
// discarded and the delimiters still open at that point are closed. Field
// values are never synthesised.
//
// It fails when the delimiters are balanced (the parse failure is not a
// truncation) or when no element was completed before the cut-off.
func RecoverTruncation(text string) (string, error) {
	if !ScanBalance(text).Truncated() {
		return "", errNotTruncated
	}

	trimmed := strings.TrimRight(text, " \t\r\n")
	cut := lastElementEnd(trimmed)
	if cut < 0 {
		return "", errNoElementBounds
	}

	kept := trimmed[:cut]
	return kept + ScanBalance(kept).Closers(), nil
}

// lastElementEnd returns the index just past the '}' that most recently
// closed an object sitting directly inside the outermost array, or -1.
func lastElementEnd(text string) int {
	var st scanState
	end := -1
	for i := 0; i < len(text); i++ {
		before := st.depth()
		if !st.step(text[i]) || text[i] != '}' {
			continue
		}
		if before == 2 && st.depth() == 1 && st.stack[0] == '[' {
			end = i + 1
		}
	}
	return end
}
