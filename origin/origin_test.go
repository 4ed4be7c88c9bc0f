package origin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithOriginAndFromContext(t *testing.T) {
	ctx := WithOrigin(context.Background(), Tag{Name: "left-pad"})

	tag, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "left-pad", tag.Name)
	assert.False(t, tag.Trusted)
}

func TestFromContextUnset(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, Unknown, Name(context.Background()))
}

func TestWithOriginOverridesOuter(t *testing.T) {
	ctx := WithOrigin(context.Background(), Tag{Name: "outer-pkg"})
	ctx = WithOrigin(ctx, Tag{Name: "inner-pkg", Trusted: true})

	tag, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "inner-pkg", tag.Name)
	assert.True(t, tag.Trusted)
}
