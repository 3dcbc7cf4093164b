package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// PrettyHandler writes each record as an indented JSON object. Fields keep
// the order they were logged in: time, level, source, msg, then attributes.
type PrettyHandler struct {
	out  io.Writer
	mu   *sync.Mutex
	opts slog.HandlerOptions

	// preformatted attrs, nested under the open groups
	base   object
	groups []string
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{out: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	rec := object{
		{slog.TimeKey, ts.Format(time.RFC3339Nano)},
		{slog.LevelKey, r.Level.String()},
	}
	if h.opts.AddSource && r.PC != 0 {
		rec = append(rec, field{slog.SourceKey, callerOf(r.PC)})
	}
	rec = append(rec, field{slog.MessageKey, r.Message})

	attrs := h.base.clone()
	r.Attrs(func(a slog.Attr) bool {
		attrs = attrs.with(h.groups, a)
		return true
	})
	rec = append(rec, attrs...)

	flat, err := json.Marshal(rec)
	if err != nil {
		flat, _ = json.Marshal(object{rec[0], rec[1], {slog.MessageKey, r.Message}, {"log_error", err.Error()}})
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, flat, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(buf.Bytes())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.base = h.base.clone()
	for _, a := range attrs {
		next.base = next.base.with(h.groups, a)
	}
	return &next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

type field struct {
	key string
	val any
}

// object is a JSON object that marshals its fields in insertion order.
type object []field

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.val)
		if err != nil {
			return nil, fmt.Errorf("attr %q: %w", f.key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o object) clone() object {
	out := make(object, len(o))
	for i, f := range o {
		if sub, ok := f.val.(object); ok {
			f.val = sub.clone()
		}
		out[i] = f
	}
	return out
}

// with adds a under the nested groups path, creating groups as needed.
func (o object) with(path []string, a slog.Attr) object {
	if len(path) == 0 {
		return o.add(a)
	}
	for i := range o {
		if o[i].key != path[0] {
			continue
		}
		if sub, ok := o[i].val.(object); ok {
			o[i].val = sub.with(path[1:], a)
			return o
		}
	}
	return append(o, field{path[0], object(nil).with(path[1:], a)})
}

func (o object) add(a slog.Attr) object {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		var sub object
		for _, ga := range v.Group() {
			sub = sub.add(ga)
		}
		if a.Key == "" {
			return append(o, sub...)
		}
		if len(sub) == 0 {
			return o
		}
		return append(o, field{a.Key, sub})
	}
	if a.Key == "" {
		return o
	}
	return append(o, field{a.Key, jsonValue(v)})
}

func jsonValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		}
	}
	return v.Any()
}

func callerOf(pc uintptr) string {
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
