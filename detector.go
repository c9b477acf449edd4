package cloner

// AmbiguousCandidate is a lineage-less record on the current provider that
// shares its CreatedAt with more than one cross-provider record.
type AmbiguousCandidate struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	CreatedAt string `json:"created_at"`
	// Matches is the number of cross-provider records sharing CreatedAt.
	Matches int `json:"matches"`
}

// Classification is the detector's verdict. Legacy maps the storage path of
// each legacy clone to the original it mirrors.
type Classification struct {
	Legacy    map[string]*Record
	Ambiguous []AmbiguousCandidate
	// Unmatched counts candidates with no cross-provider record at all,
	// which is the normal state of a session started on the current provider.
	Unmatched int

	ids map[string]string
}

// Pairs returns the legacy clones as clone id -> original id.
func (c *Classification) Pairs() map[string]string {
	out := make(map[string]string, len(c.Legacy))
	for path, o := range c.Legacy {
		out[c.ids[path]] = o.ID
	}
	return out
}

// Detector finds clones created by tool versions that did not write lineage.
// Correlation is by exact CreatedAt string; see Classify.
type Detector struct {
	provider string
}

// NewDetector returns a detector for the given current provider.
func NewDetector(provider string) *Detector {
	return &Detector{provider: provider}
}

// Classify groups records by CreatedAt. A record on the current provider
// without lineage is a legacy clone of o only if o is the single record in its
// group whose provider differs from the current one. With more than one such
// record the candidate is ambiguous; with none it is unmatched. Neither is
// ever deleted. Records with an empty CreatedAt are never candidates.
func (d *Detector) Classify(records []*Record) *Classification {
	groups := make(map[string][]*Record)
	for _, r := range records {
		if r.CreatedAt == "" {
			continue
		}
		groups[r.CreatedAt] = append(groups[r.CreatedAt], r)
	}

	c := &Classification{Legacy: make(map[string]*Record), ids: make(map[string]string)}
	for _, r := range records {
		if r.CreatedAt == "" || r.Lineage != nil || r.Provider != d.provider {
			continue
		}
		var others []*Record
		for _, o := range groups[r.CreatedAt] {
			if o != r && o.Provider != d.provider {
				others = append(others, o)
			}
		}
		switch len(others) {
		case 1:
			c.Legacy[r.Path] = others[0]
			c.ids[r.Path] = r.ID
		case 0:
			c.Unmatched++
		default:
			c.Ambiguous = append(c.Ambiguous, AmbiguousCandidate{
				ID:        r.ID,
				Path:      r.Path,
				CreatedAt: r.CreatedAt,
				Matches:   len(others),
			})
		}
	}
	return c
}
