package recovery

// scanState tracks string literals and open delimiters while walking a
// JSON-like text one byte at a time. Delimiters inside string literals are
// never structural.
type scanState struct {
	inString bool
	escaped  bool
	stack    []byte

	// Closers that did not match the innermost open delimiter.
	extraBraces   int
	extraBrackets int
}

// step consumes b and reports whether it was structural, i.e. outside any
// string literal (the quotes delimiting a literal are not structural).
func (s *scanState) step(b byte) bool {
	if s.inString {
		switch {
		case s.escaped:
			s.escaped = false
		case b == '\\':
			s.escaped = true
		case b == '"':
			s.inString = false
		}
		return false
	}

	switch b {
	case '"':
		s.inString = true
		return false
	case '{', '[':
		s.stack = append(s.stack, b)
	case '}', ']':
		if n := len(s.stack); n > 0 && s.stack[n-1] == openerFor(b) {
			s.stack = s.stack[:n-1]
		} else if b == '}' {
			s.extraBraces++
		} else {
			s.extraBrackets++
		}
	}
	return true
}

// depth is the number of currently open delimiters.
func (s *scanState) depth() int {
	return len(s.stack)
}

func openerFor(closer byte) byte {
	if closer == '}' {
		return '{'
	}
	return '['
}

func closerFor(opener byte) byte {
	if opener == '{' {
		return '}'
	}
	return ']'
}

// Balance is the result of a delimiter scan: how many braces and brackets
// were left open, and how many closers had nothing to close.
type Balance struct {
	OpenBraces    int  `json:"open_braces"`
	OpenBrackets  int  `json:"open_brackets"`
	ExtraBraces   int  `json:"extra_braces"`
	ExtraBrackets int  `json:"extra_brackets"`
	InString      bool `json:"in_string"`

	open []byte
}

// Balanced reports whether every delimiter was matched.
func (b Balance) Balanced() bool {
	return b.OpenBraces == 0 && b.OpenBrackets == 0 && b.ExtraBraces == 0 && b.ExtraBrackets == 0
}

// Truncated reports whether the scan ended with delimiters still open, which
// is the signature of a reply cut off before the array was closed.
func (b Balance) Truncated() bool {
	return b.OpenBraces > 0 || b.OpenBrackets > 0
}

// Closers returns the closing tokens for the open delimiters, innermost first.
func (b Balance) Closers() string {
	out := make([]byte, len(b.open))
	for i := range b.open {
		out[i] = closerFor(b.open[len(b.open)-1-i])
	}
	return string(out)
}

// ScanBalance walks text once and reports its delimiter balance, ignoring
// delimiters that appear inside string literals.
func ScanBalance(text string) Balance {
	var st scanState
	for i := 0; i < len(text); i++ {
		st.step(text[i])
	}

	bal := Balance{
		ExtraBraces:   st.extraBraces,
		ExtraBrackets: st.extraBrackets,
		InString:      st.inString,
		open:          st.stack,
	}
	for _, d := range st.stack {
		if d == '{' {
			bal.OpenBraces++
		} else {
			bal.OpenBrackets++
		}
	}
	return bal
}

// skipSpace returns the index of the first non-whitespace byte at or after i.
func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
