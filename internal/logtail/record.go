package logtail

import (
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Attr is one key=value pair from a log line.
type Attr struct {
	Key   string
	Value string
}

// Record is a parsed log/slog text handler line.
type Record struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   []Attr
}

// hiddenKeys are attributes present on every line and not worth showing.
var hiddenKeys = map[string]struct{}{
	"service": {},
	"version": {},
}

// Parse decodes a logfmt line written by the slog text handler into a
// Record. Lines that carry no level and message are reported as not ok.
// A syntax error ends decoding; the pairs read before it are kept.
func Parse(line string) (Record, bool) {
	var rec Record
	dec := logfmt.NewDecoder(strings.NewReader(line))
	if !dec.ScanRecord() {
		return Record{}, false
	}
	for dec.ScanKeyval() {
		key, value := string(dec.Key()), string(dec.Value())
		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
				rec.Time = t
			}
		case "level":
			rec.Level = strings.ToUpper(value)
		case "msg":
			rec.Message = value
		default:
			rec.Attrs = append(rec.Attrs, Attr{Key: key, Value: value})
		}
	}
	if rec.Level == "" && rec.Message == "" {
		return Record{}, false
	}
	return rec, true
}

// Summary renders the record compactly: clock time, message and the
// attributes that are not on every line, re-encoded as logfmt.
func (r Record) Summary() string {
	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(r.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(r.Message)

	sep := b.Len() > 0
	enc := logfmt.NewEncoder(&b)
	for _, a := range r.Attrs {
		if _, skip := hiddenKeys[a.Key]; skip {
			continue
		}
		if sep {
			b.WriteByte(' ')
			sep = false
		}
		// Keys came out of the decoder, so they always encode.
		_ = enc.EncodeKeyval(a.Key, a.Value)
	}
	return b.String()
}
