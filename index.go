package cloner

type indexKey struct {
	original string
	provider string
}

// Index maps (original id, provider) to the clone that already exists for it.
// It is built once from a complete snapshot and never mutated afterwards.
type Index struct {
	clones     map[indexKey]*Record
	duplicates []*Record
}

// BuildIndex indexes every record that carries lineage. A clone whose source
// is itself a clone is attributed to the root original of the chain.
func BuildIndex(records []*Record) *Index {
	byID := make(map[string]*Record, len(records))
	for _, r := range records {
		if _, ok := byID[r.ID]; !ok {
			byID[r.ID] = r
		}
	}

	idx := &Index{clones: make(map[indexKey]*Record)}
	for _, r := range records {
		if r.Lineage == nil || r.Lineage.ClonedFrom == "" {
			continue
		}
		key := indexKey{original: rootOf(r, byID), provider: r.Provider}
		if _, exists := idx.clones[key]; exists {
			idx.duplicates = append(idx.duplicates, r)
			continue
		}
		idx.clones[key] = r
	}
	return idx
}

// rootOf follows ClonedFrom until it reaches a record without lineage, or an
// id that is not in the snapshot.
func rootOf(r *Record, byID map[string]*Record) string {
	id := r.Lineage.ClonedFrom
	seen := map[string]bool{r.ID: true}
	for !seen[id] {
		seen[id] = true
		src, ok := byID[id]
		if !ok || src.Lineage == nil || src.Lineage.ClonedFrom == "" {
			return id
		}
		id = src.Lineage.ClonedFrom
	}
	return id
}

// HasClone reports whether originalID already has a clone for provider.
func (x *Index) HasClone(originalID, provider string) bool {
	_, ok := x.clones[indexKey{original: originalID, provider: provider}]
	return ok
}

// Lookup returns the clone of originalID for provider, if any.
func (x *Index) Lookup(originalID, provider string) (*Record, bool) {
	r, ok := x.clones[indexKey{original: originalID, provider: provider}]
	return r, ok
}

// Len returns the number of indexed (original, provider) pairs.
func (x *Index) Len() int { return len(x.clones) }

// Duplicates returns clones that share a key with an earlier indexed clone.
// They indicate the archive was modified outside this tool.
func (x *Index) Duplicates() []*Record { return x.duplicates }
