package cloner_test

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cloner "github.com/armatrix/codex-session-cloner"
	"github.com/armatrix/codex-session-cloner/internal/rollout"
	"github.com/armatrix/codex-session-cloner/session"
)

const (
	idA = "0199cdf7-1a2b-7c3d-8e4f-000000000a0a"
	idB = "0199cdf7-1a2b-7c3d-8e4f-000000000b0b"
	idC = "0199cdf7-1a2b-7c3d-8e4f-000000000c0c"

	newID1 = "0199d000-0000-7000-8000-000000000001"
	newID2 = "0199d000-0000-7000-8000-000000000002"

	ts1 = "2025-10-10T14:53:44.123Z"
	ts2 = "2025-10-11T09:00:00.000Z"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

const body = `{"timestamp":"2025-10-10T14:53:45.000Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"hello"}]}}
{"timestamp":"2025-10-10T14:53:46.000Z","type":"event_msg","payload":{"type":"agent_message","message":"hi"}}
`

func rolloutBytes(id, provider, ts string) []byte {
	meta := fmt.Sprintf(`{"timestamp":%q,"type":"session_meta","payload":{"id":%q,"timestamp":%q,"cwd":"/work","originator":"codex_cli_rs","cli_version":"0.46.0","model_provider":%q}}`,
		ts, id, ts, provider)
	return []byte(meta + "\n" + body)
}

func cloneBytes(id, provider, ts, from, fromProvider string) []byte {
	meta := fmt.Sprintf(`{"timestamp":%q,"type":"session_meta","payload":{"id":%q,"timestamp":%q,"model_provider":%q,"cloned_from":%q,"original_provider":%q,"clone_timestamp":"2025-12-01T00:00:00Z"}}`,
		ts, id, ts, provider, from, fromProvider)
	return []byte(meta + "\n" + body)
}

func rolloutPath(ts, id string) string {
	return "2025/10/10/rollout-" + ts[:10] + "T14-53-44-" + id + ".jsonl"
}

type seeded struct {
	path string
	data []byte
}

func seed(t *testing.T, files ...seeded) *session.MemoryStore {
	t.Helper()
	m := session.NewMemoryStore()
	for _, f := range files {
		m.Put(f.path, f.data)
	}
	return m
}

func snapshot(m *session.MemoryStore) map[string][]byte {
	out := make(map[string][]byte)
	for _, p := range m.Paths() {
		data, _ := m.Get(p)
		out[p] = data
	}
	return out
}

func fixedIDs(ids ...string) cloner.IDFunc {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func decode(t *testing.T, m *session.MemoryStore, p string) *cloner.Record {
	t.Helper()
	data, ok := m.Get(p)
	require.True(t, ok, "missing %s", p)
	rec, err := rollout.Decode(p, data)
	require.NoError(t, err)
	return rec
}

// tail returns everything after the metadata line.
func tail(data []byte) []byte {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return nil
	}
	return data[i:]
}
