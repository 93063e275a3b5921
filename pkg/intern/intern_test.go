package intern

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternReturnsStableHandles(t *testing.T) {
	in := New()

	h1 := in.Intern("gcc")
	h2 := in.Intern("flake8")
	h3 := in.Intern("gcc")

	assert.Equal(t, h1, h3)
	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, None, h1)

	assert.Equal(t, "gcc", in.Lookup(h1))
	assert.Equal(t, "flake8", in.Lookup(h2))
	assert.Equal(t, 2, in.Len())
}

func TestNoneIsNeverIssued(t *testing.T) {
	in := New()

	assert.Equal(t, "", in.Lookup(None))
	assert.Equal(t, None, in.Get("never seen"))

	h := in.Intern("")
	assert.NotEqual(t, None, h, "even the empty string gets a real handle")
	assert.Equal(t, h, in.Get(""))
}

func TestConcurrentInterning(t *testing.T) {
	in := New()

	var wg sync.WaitGroup
	const workers = 8
	const strings = 100

	handles := make([][]Handle, workers)
	for w := 0; w < workers; w++ {
		w := w
		handles[w] = make([]Handle, strings)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < strings; i++ {
				handles[w][i] = in.Intern(fmt.Sprintf("category-%d", i))
			}
		}()
	}
	wg.Wait()

	require.Equal(t, strings, in.Len())
	for w := 1; w < workers; w++ {
		assert.Equal(t, handles[0], handles[w], "all workers must agree on handles")
	}
}
