package flow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFlowIsIdentityPassThrough(t *testing.T) {
	f := Default()

	assert.True(t, f.Fires("anything"))
	assert.True(t, f.Fires(""))
	assert.Equal(t, "anything", f.Propagate("anything"))
	assert.False(t, f.HasCondition())
	assert.False(t, f.HasTransform())
}

func TestZeroValueFlowBehavesLikeDefault(t *testing.T) {
	var f Flow

	assert.True(t, f.Fires("x"))
	assert.Equal(t, "x", f.Propagate("x"))
}

func TestWhenGatesPropagation(t *testing.T) {
	f := When(ConditionFunc(func(output string) bool {
		return len(output) > 3
	}))

	assert.True(t, f.HasCondition())
	assert.True(t, f.Fires("long enough"))
	assert.False(t, f.Fires("ab"))
}

func TestMapTransformsValue(t *testing.T) {
	f := Map(TransformFunc(strings.ToUpper))

	assert.True(t, f.HasTransform())
	assert.True(t, f.Fires("hello"))
	assert.Equal(t, "HELLO", f.Propagate("hello"))
}

func TestConditionAndTransformCompose(t *testing.T) {
	f := Flow{
		Condition: ConditionFunc(func(output string) bool { return output != "" }),
		Transform: TransformFunc(func(output string) string { return "wrapped:" + output }),
	}

	assert.False(t, f.Fires(""))
	assert.True(t, f.Fires("v"))
	assert.Equal(t, "wrapped:v", f.Propagate("v"))
}
