package cloner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_HasClone(t *testing.T) {
	records := []*Record{
		original("a", "openai", "t0"),
		cloneRecord("a1", "anthropic", "t0", "a", "openai"),
		original("b", "openai", "t1"),
	}

	idx := BuildIndex(records)
	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.HasClone("a", "anthropic"))
	assert.False(t, idx.HasClone("a", "azure"), "keyed by provider")
	assert.False(t, idx.HasClone("b", "anthropic"))

	c, ok := idx.Lookup("a", "anthropic")
	require.True(t, ok)
	assert.Equal(t, "a1", c.ID)
}

func TestBuildIndex_ChainResolvesToRoot(t *testing.T) {
	// a1 was cloned from a; a2 was (wrongly) cloned from a1
	records := []*Record{
		original("a", "openai", "t0"),
		cloneRecord("a1", "azure", "t0", "a", "openai"),
		cloneRecord("a2", "anthropic", "t0", "a1", "azure"),
	}

	idx := BuildIndex(records)
	assert.True(t, idx.HasClone("a", "azure"))
	assert.True(t, idx.HasClone("a", "anthropic"), "chain is attributed to the root")
	assert.False(t, idx.HasClone("a1", "anthropic"))
}

func TestBuildIndex_CycleTerminates(t *testing.T) {
	records := []*Record{
		cloneRecord("x", "anthropic", "t0", "y", "openai"),
		cloneRecord("y", "azure", "t0", "x", "openai"),
	}

	idx := BuildIndex(records)
	assert.Equal(t, 2, idx.Len())
}

func TestBuildIndex_MissingSourceKeepsID(t *testing.T) {
	idx := BuildIndex([]*Record{cloneRecord("a1", "anthropic", "t0", "gone", "openai")})
	assert.True(t, idx.HasClone("gone", "anthropic"))
}

func TestBuildIndex_Duplicates(t *testing.T) {
	records := []*Record{
		original("a", "openai", "t0"),
		cloneRecord("a1", "anthropic", "t0", "a", "openai"),
		cloneRecord("a2", "anthropic", "t0", "a", "openai"),
	}

	idx := BuildIndex(records)
	assert.Equal(t, 1, idx.Len())
	require.Len(t, idx.Duplicates(), 1)
	assert.Equal(t, "a2", idx.Duplicates()[0].ID)
}

func TestBuildIndex_EmptyClonedFromIgnored(t *testing.T) {
	idx := BuildIndex([]*Record{cloneRecord("a1", "anthropic", "t0", "", "openai")})
	assert.Equal(t, 0, idx.Len())
}
