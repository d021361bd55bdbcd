package idgen_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/g5becks/fractaldb/internal/idgen"
)

func TestNew_IsSortable(t *testing.T) {
	first := idgen.New()
	time.Sleep(2 * time.Millisecond)
	second := idgen.New()

	assert.Len(t, first, 36)
	assert.Less(t, first, second, "ids minted later must sort after earlier ones")
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := idgen.New()
		_, dup := seen[id]
		assert.False(t, dup, "id %s generated twice", id)
		seen[id] = struct{}{}
	}
}
