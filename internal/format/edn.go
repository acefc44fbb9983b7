package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes v as EDN. Values go through JSON first, so json tags pick
// the keys and only maps, vectors, strings, numbers, booleans and nil remain.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}

	var buf bytes.Buffer
	e := ednWriter{buf: &buf, pretty: pretty}
	e.value(x, 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

type ednWriter struct {
	buf    *bytes.Buffer
	pretty bool
}

func (e ednWriter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		e.buf.WriteString("nil")
	case bool:
		e.buf.WriteString(strconv.FormatBool(t))
	case string:
		e.buf.WriteString(strconv.Quote(t))
	case json.Number:
		e.buf.WriteString(t.String())
	case []any:
		e.seq('[', ']', len(t), depth, func(i int) { e.value(t[i], depth+1) })
	case map[string]any:
		entries := mapEntries(t)
		e.seq('{', '}', len(entries), depth, func(i int) {
			e.buf.WriteString(entries[i].kw)
			e.buf.WriteByte(' ')
			e.value(entries[i].val, depth+1)
		})
	default:
		e.buf.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

// seq writes n elements between open and close, one per line when pretty.
func (e ednWriter) seq(open, close byte, n, depth int, elem func(int)) {
	e.buf.WriteByte(open)
	if n == 0 {
		e.buf.WriteByte(close)
		return
	}
	for i := 0; i < n; i++ {
		switch {
		case e.pretty:
			e.buf.WriteByte('\n')
			e.buf.WriteString(strings.Repeat("  ", depth+1))
		case i > 0:
			e.buf.WriteByte(' ')
		}
		elem(i)
	}
	if e.pretty {
		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat("  ", depth))
	}
	e.buf.WriteByte(close)
}

type ednEntry struct {
	kw  string
	val any
}

// mapEntries pairs each key with its keyword, sorted by keyword. A key whose
// stripped keyword is already taken keeps its underscores.
func mapEntries(m map[string]any) []ednEntry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kws := make(map[string]string, len(keys))
	taken := make(map[string]bool, len(keys))
	for _, k := range keys {
		if kw := keyword(k); !strings.HasPrefix(strings.TrimSpace(k), "_") {
			kws[k] = kw
			taken[kw] = true
		}
	}
	for _, k := range keys {
		if _, ok := kws[k]; ok {
			continue
		}
		kw := keyword(k)
		if taken[kw] {
			kw = ":" + strings.ReplaceAll(strings.TrimSpace(k), " ", "-")
		}
		kws[k] = kw
		taken[kw] = true
	}
	out := make([]ednEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, ednEntry{kw: kws[k], val: m[k]})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].kw < out[b].kw })
	return out
}

// keyword turns a JSON key into an EDN keyword: "_hints" -> :hints,
// "createdAt" -> :createdAt, spaces become dashes.
func keyword(k string) string {
	k = strings.TrimLeft(strings.TrimSpace(k), "_")
	return ":" + strings.ReplaceAll(k, " ", "-")
}
