package cloner

func original(id, provider, createdAt string) *Record {
	return &Record{
		ID:        id,
		Provider:  provider,
		CreatedAt: createdAt,
		Path:      "sessions/" + id + ".jsonl",
		Content:   []byte(id),
	}
}

func cloneRecord(id, provider, createdAt, from, fromProvider string) *Record {
	r := original(id, provider, createdAt)
	r.Lineage = &Lineage{
		ClonedFrom:       from,
		OriginalProvider: fromProvider,
		CloneTimestamp:   "2026-01-01T00:00:00Z",
	}
	return r
}

func seqIDs(ids ...string) IDFunc {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}
