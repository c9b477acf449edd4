// Package session provides cloner.Store implementations over a Codex
// session archive.
//
// Available stores:
//   - [FileStore] reads and writes rollout files under a directory tree.
//   - [MemoryStore] keeps rollouts in memory (useful for testing).
//
// Both decode and encode rollouts with the same codec, so a clone produced by
// either is byte-for-byte what the other would produce.
package session
