package recovery

import "strings"

// Rewrite is a pure text-to-text repair rule.
type Rewrite func(string) string

// heuristicRewrites is applied in this exact order by Repair.
var heuristicRewrites = []Rewrite{
	InsertMissingCommas,
	StripTrailingArrayComma,
	StripTrailingObjectComma,
}

// Repair applies the heuristic rewrites to the whole candidate. Every rule
// only touches structural characters, so valid JSON is returned unchanged.
func Repair(text string) string {
	for _, rewrite := range heuristicRewrites {
		text = rewrite(text)
	}
	return text
}

// InsertMissingCommas inserts a comma wherever a closing '}' is followed,
// across whitespace only, by an opening '{'.
func InsertMissingCommas(text string) string {
	var (
		st     scanState
		b      strings.Builder
		last   int
		edited bool
	)
	for i := 0; i < len(text); i++ {
		if !st.step(text[i]) || text[i] != '}' {
			continue
		}
		j := skipSpace(text, i+1)
		if j >= len(text) || text[j] != '{' {
			continue
		}
		if !edited {
			b.Grow(len(text) + 16)
			edited = true
		}
		b.WriteString(text[last : i+1])
		b.WriteByte(',')
		last = i + 1
	}
	if !edited {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// StripTrailingArrayComma removes a comma that precedes, across whitespace
// only, a closing ']'.
func StripTrailingArrayComma(text string) string {
	return stripCommaBefore(text, ']')
}

// StripTrailingObjectComma removes a comma that precedes, across whitespace
// only, a closing '}'.
func StripTrailingObjectComma(text string) string {
	return stripCommaBefore(text, '}')
}

func stripCommaBefore(text string, closer byte) string {
	var (
		st     scanState
		b      strings.Builder
		last   int
		edited bool
	)
	for i := 0; i < len(text); i++ {
		if !st.step(text[i]) || text[i] != ',' {
			continue
		}
		j := skipSpace(text, i+1)
		if j >= len(text) || text[j] != closer {
			continue
		}
		if !edited {
			b.Grow(len(text))
			edited = true
		}
		b.WriteString(text[last:i])
		last = i + 1
	}
	if !edited {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}
