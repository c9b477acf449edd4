// Package rollout decodes and rewrites Codex rollout files.
//
// A rollout is JSONL. Its first line is the session_meta envelope:
//
//	{"timestamp":"...","type":"session_meta","payload":{"id":"...","timestamp":"...","model_provider":"openai",...}}
//
// Only that line is ever touched; every other line is opaque.
package rollout

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	cloner "github.com/armatrix/codex-session-cloner"
)

// Metadata keys inside the session_meta payload.
const (
	TypeSessionMeta       = "session_meta"
	FieldID               = "payload.id"
	FieldTimestamp        = "payload.timestamp"
	FieldProvider         = "payload.model_provider"
	FieldClonedFrom       = "payload.cloned_from"
	FieldOriginalProvider = "payload.original_provider"
	FieldCloneTimestamp   = "payload.clone_timestamp"
)

var (
	errEmpty      = errors.New("empty file")
	errInvalid    = errors.New("invalid JSON on metadata line")
	errNotSession = errors.New("not a session file")
	errNoID       = errors.New("session_meta has no payload.id")
)

// nameRe matches rollout-YYYY-MM-DDTHH-MM-SS-<uuid>.jsonl.
var nameRe = regexp.MustCompile(
	`^rollout-(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2})-[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-` +
		`[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\.jsonl$`,
)

// splitMeta returns the metadata line (without its terminator) and the rest
// of data, starting with the terminator.
func splitMeta(data []byte) (meta, rest []byte) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return data, nil
	}
	meta, rest = data[:i], data[i:]
	if n := len(meta); n > 0 && meta[n-1] == '\r' {
		meta, rest = meta[:n-1], data[i-1:]
	}
	return meta, rest
}

// Decode parses a rollout stored at path. Errors are *cloner.RecordError
// wrapping cloner.ErrParse.
func Decode(path string, data []byte) (*cloner.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, cloner.NewParseError(path, errEmpty)
	}
	meta, _ := splitMeta(data)
	if !gjson.ValidBytes(meta) {
		return nil, cloner.NewParseError(path, errInvalid)
	}

	doc := gjson.ParseBytes(meta)
	if doc.Get("type").String() != TypeSessionMeta {
		return nil, cloner.NewParseError(path, errNotSession)
	}
	payload := doc.Get("payload")
	if !payload.IsObject() {
		return nil, cloner.NewParseError(path, errNotSession)
	}
	id := doc.Get(FieldID).String()
	if id == "" {
		return nil, cloner.NewParseError(path, errNoID)
	}

	r := &cloner.Record{
		ID:        id,
		Provider:  doc.Get(FieldProvider).String(),
		CreatedAt: createdAt(doc, path),
		Content:   data,
		Path:      path,
	}
	// Presence of cloned_from, even empty or null, marks a clone.
	if doc.Get(FieldClonedFrom).Exists() {
		r.Lineage = &cloner.Lineage{
			ClonedFrom:       doc.Get(FieldClonedFrom).String(),
			OriginalProvider: doc.Get(FieldOriginalProvider).String(),
			CloneTimestamp:   doc.Get(FieldCloneTimestamp).String(),
		}
	}
	return r, nil
}

// createdAt prefers the payload timestamp, then the envelope timestamp, then
// the timestamp embedded in the file name.
func createdAt(doc gjson.Result, path string) string {
	if ts := doc.Get(FieldTimestamp).String(); ts != "" {
		return ts
	}
	if ts := doc.Get("timestamp").String(); ts != "" {
		return ts
	}
	return TimestampFromName(filepath.Base(path))
}

type fieldSet struct {
	path  string
	value string
}

// Encode produces the bytes of clone from the source rollout content. The
// metadata line is rewritten in place; all other bytes are copied verbatim.
// src is not modified.
func Encode(src []byte, clone *cloner.Record) ([]byte, error) {
	if clone.Lineage == nil {
		return nil, fmt.Errorf("encode %s: clone has no lineage", clone.ID)
	}
	meta, rest := splitMeta(src)
	line := append([]byte(nil), meta...)

	sets := []fieldSet{
		{FieldID, clone.ID},
		{FieldProvider, clone.Provider},
		{FieldClonedFrom, clone.Lineage.ClonedFrom},
		{FieldOriginalProvider, clone.Lineage.OriginalProvider},
		{FieldCloneTimestamp, clone.Lineage.CloneTimestamp},
	}
	// A CreatedAt taken from the source file name is written into the
	// payload, since the clone's own name need not carry it.
	if clone.CreatedAt != "" && gjson.GetBytes(line, FieldTimestamp).String() == "" &&
		gjson.GetBytes(line, "timestamp").String() == "" {
		sets = append(sets, fieldSet{FieldTimestamp, clone.CreatedAt})
	}
	var err error
	for _, s := range sets {
		line, err = sjson.SetBytes(line, s.path, s.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: set %s: %w", clone.ID, s.path, err)
		}
	}

	out := make([]byte, 0, len(line)+len(rest))
	out = append(out, line...)
	out = append(out, rest...)
	return out, nil
}

// CloneName derives the clone's file name from the source file name by
// swapping the session id, so the clone sorts next to its source. A name
// without the id keeps its embedded timestamp when it has one.
func CloneName(name, srcID, newID string) string {
	if srcID != "" && strings.Contains(name, srcID) {
		return strings.ReplaceAll(name, srcID, newID)
	}
	if ts := TimestampFromName(name); ts != "" {
		return "rollout-" + ts + "-" + newID + ".jsonl"
	}
	return "rollout-CLONE-" + newID + ".jsonl"
}

// TimestampFromName extracts "2025-10-10T14-53-44" from
// "rollout-2025-10-10T14-53-44-<uuid>.jsonl". It returns "" otherwise.
func TimestampFromName(name string) string {
	m := nameRe.FindStringSubmatch(name)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
