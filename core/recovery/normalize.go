package recovery

import "strings"

const fence = "```"

// Span is a half-open byte range [Start, End) into a reply. Spans never copy
// the reply; Text slices it on demand.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Text returns the slice of raw covered by the span.
func (s Span) Text(raw string) string {
	return raw[s.Start:s.End]
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Candidate is a text believed to contain the array, tagged with the stage
// that produced it.
type Candidate struct {
	Text  string `json:"-"`
	Stage Stage  `json:"stage"`
}

type normalizeState int

const (
	stateTrim normalizeState = iota
	stateOpeningFence
	stateClosingFence
	stateLocate
	stateDone
)

// Normalize isolates the candidate array region of raw. Surrounding
// whitespace and markdown fence lines are dropped, then the array opened by
// the first '[' is returned. It fails with ErrNoArrayFound when the reply
// has no '[' followed by a ']'.
func Normalize(raw string) (Span, error) {
	span := Span{Start: 0, End: len(raw)}
	found := false

	for state := stateTrim; state != stateDone; {
		switch state {
		case stateTrim:
			span = trimSpan(raw, span)
			state = stateOpeningFence
		case stateOpeningFence:
			span = dropOpeningFence(raw, span)
			state = stateClosingFence
		case stateClosingFence:
			span = dropClosingFence(raw, span)
			state = stateLocate
		case stateLocate:
			span, found = locateArray(raw, span)
			state = stateDone
		}
	}

	if !found {
		return Span{}, noArrayFound()
	}
	return span, nil
}

func trimSpan(raw string, s Span) Span {
	for s.Start < s.End && isSpace(raw[s.Start]) {
		s.Start++
	}
	for s.End > s.Start && isSpace(raw[s.End-1]) {
		s.End--
	}
	return s
}

// dropOpeningFence removes a leading "```lang" line.
func dropOpeningFence(raw string, s Span) Span {
	if s.Len() < len(fence) || raw[s.Start:s.Start+len(fence)] != fence {
		return s
	}
	i := s.Start + len(fence)
	for i < s.End && isFenceTag(raw[i]) {
		i++
	}
	for i < s.End && (raw[i] == ' ' || raw[i] == '\t') {
		i++
	}
	if i < s.End && raw[i] == '\r' {
		i++
	}
	if i < s.End && raw[i] == '\n' {
		i++
	}
	s.Start = i
	return trimSpan(raw, s)
}

// dropClosingFence removes a trailing "```".
func dropClosingFence(raw string, s Span) Span {
	if s.Len() < len(fence) || raw[s.End-len(fence):s.End] != fence {
		return s
	}
	s.End -= len(fence)
	return trimSpan(raw, s)
}

// locateArray requires a '[' followed somewhere by a ']'. The region starts
// at the first '[' and ends at the ']' closing it; when the array is never
// closed (a truncated reply) the region runs to the end of the span so no
// complete element is lost to an inner ']'.
func locateArray(raw string, s Span) (Span, bool) {
	body := s.Text(raw)
	first := strings.IndexByte(body, '[')
	last := strings.LastIndexByte(body, ']')
	if first < 0 || last <= first {
		return Span{}, false
	}

	start := s.Start + first
	var st scanState
	for i := start; i < s.End; i++ {
		st.step(raw[i])
		if st.depth() == 0 {
			return Span{Start: start, End: i + 1}, true
		}
	}
	return Span{Start: start, End: s.End}, true
}

func isFenceTag(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '-' || b == '+'
}
