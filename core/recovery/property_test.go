package recovery

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type listed struct {
	A string   `json:"a"`
	L []string `json:"l"`
}

// Field values deliberately contain delimiters and quotes so that every
// scan has to be string-literal aware.
var valueGen = rapid.StringMatching(`[a-z \[\]{},:"\\]{0,6}`)

func listedGen() *rapid.Generator[listed] {
	return rapid.Custom(func(t *rapid.T) listed {
		l := rapid.SliceOfN(valueGen, 0, 3).Draw(t, "l")
		if l == nil {
			l = []string{}
		}
		return listed{A: valueGen.Draw(t, "a"), L: l}
	})
}

// arrayText encodes items joined by sep and returns the text together with
// the offset just past each element.
func arrayText(t *rapid.T, items []listed, sep string) (string, []int) {
	var b strings.Builder
	ends := make([]int, len(items))
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(sep)
		}
		data, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		b.Write(data)
		ends[i] = b.Len()
	}
	b.WriteByte(']')
	return b.String(), ends
}

func assertRecords(t *rapid.T, want []listed, got []Record) {
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].A, got[i].String("a"), "record %d", i)
		assert.Equal(t, want[i].L, got[i].Strings("l"), "record %d", i)
	}
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(listedGen(), 0, 6).Draw(t, "items")
		text, _ := arrayText(t, items, ",")

		outcome := Recover(text, listSchema)
		require.True(t, outcome.OK(), "failure: %v", outcome.Err())
		assert.Equal(t, StageStrict, outcome.Stage)
		assertRecords(t, items, outcome.Records)
	})
}

func TestProperty_WrappingIsTransparent(t *testing.T) {
	prose := rapid.StringMatching(`[A-Za-z0-9 .,:!]{0,30}`)

	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(listedGen(), 0, 4).Draw(t, "items")
		text, _ := arrayText(t, items, ",")

		var wrapped string
		prefix, suffix := prose.Draw(t, "prefix"), prose.Draw(t, "suffix")
		if rapid.Bool().Draw(t, "fenced") {
			tag := rapid.SampledFrom([]string{"", "json", "JSON"}).Draw(t, "tag")
			wrapped = prefix + "\n```" + tag + "\n" + text + "\n```\n" + suffix
		} else {
			wrapped = prefix + " " + text + "\n" + suffix
		}

		plain, err := json.Marshal(Recover(text, listSchema))
		require.NoError(t, err)
		got, err := json.Marshal(Recover(wrapped, listSchema))
		require.NoError(t, err)
		assert.JSONEq(t, string(plain), string(got))
	})
}

func TestProperty_RepairIsNoOpOnValidText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(listedGen(), 0, 5).Draw(t, "items")
		text, _ := arrayText(t, items, ",")
		assert.Equal(t, text, Repair(text))

		var indented bytes.Buffer
		require.NoError(t, json.Indent(&indented, []byte(text), "", "  "))
		assert.Equal(t, indented.String(), Repair(indented.String()))
	})
}

func TestProperty_MissingCommas(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(listedGen(), 2, 5).Draw(t, "items")
		sep := rapid.SampledFrom([]string{"", " ", "\n", "\n  ", "\t"}).Draw(t, "sep")
		text, _ := arrayText(t, items, sep)

		outcome := Recover(text, listSchema)
		require.True(t, outcome.OK(), "failure: %v", outcome.Err())
		assert.Equal(t, StageHeuristic, outcome.Stage)
		assertRecords(t, items, outcome.Records)
	})
}

func TestProperty_TrailingComma(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(listedGen(), 1, 5).Draw(t, "items")
		text, _ := arrayText(t, items, ",")
		ws := rapid.SampledFrom([]string{"", " ", "\n"}).Draw(t, "ws")
		withComma := text[:len(text)-1] + "," + ws + "]"

		outcome := Recover(withComma, listSchema)
		require.True(t, outcome.OK(), "failure: %v", outcome.Err())
		assertRecords(t, items, outcome.Records)
	})
}

func TestProperty_Truncation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(listedGen(), 1, 5).Draw(t, "items")
		text, ends := arrayText(t, items, ",")
		cut := rapid.IntRange(1, len(text)-1).Draw(t, "cut")

		complete := 0
		for _, end := range ends {
			if end <= cut {
				complete++
			}
		}

		outcome := Recover(text[:cut], listSchema)
		if complete == 0 {
			assert.False(t, outcome.OK(), "nothing complete precedes the cut")
			return
		}
		require.True(t, outcome.OK(), "failure: %v", outcome.Err())
		assert.LessOrEqual(t, len(outcome.Records), len(items))
		assertRecords(t, items[:complete], outcome.Records)
	})
}
