package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleCompile(t *testing.T) {
	r := Rule{Name: "x", Pattern: `a+b`}
	require.NoError(t, r.Compile())
	require.NoError(t, r.Compile(), "recompile is a no-op")
	assert.True(t, r.Matches("aab"))
	assert.False(t, r.Matches("b"))

	bad := Rule{Name: "bad", Pattern: `(`}
	err := bad.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "bad" pattern does not compile`)

	empty := Rule{Name: "empty"}
	require.Error(t, empty.Compile())
	assert.False(t, empty.Matches("anything"), "uncompiled rule never matches")
}

func TestRuleAppliesTo(t *testing.T) {
	assert.True(t, (&Rule{}).AppliesTo(EventBash))
	assert.True(t, (&Rule{}).AppliesTo(EventFile))
	assert.True(t, (&Rule{Event: EventBash}).AppliesTo(EventBash))
	assert.False(t, (&Rule{Event: EventBash}).AppliesTo(EventFile))
}

func TestRuleBlocks(t *testing.T) {
	assert.True(t, (&Rule{Action: ActionBlock}).Blocks())
	assert.False(t, (&Rule{Action: ActionWarn}).Blocks())
	assert.False(t, (&Rule{}).Blocks())
}
