package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetInMemory(t *testing.T) {
	c, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("gpt-4", "[]")
	assert.False(t, ok)

	require.NoError(t, c.Put("gpt-4", "[]", "hello"))
	v, ok := c.Get("gpt-4", "[]")
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok = c.Get("gpt-3.5-turbo", "[]")
	assert.False(t, ok, "model is part of the key")
}

func TestPutIsAppendOnly(t *testing.T) {
	c, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Put("m", "p", "first"))
	require.NoError(t, c.Put("m", "p", "second"))

	v, _ := c.Get("m", "p")
	assert.Equal(t, "first", v)
	assert.Equal(t, 1, c.Len())
}

func TestLoadRestoresEntriesFromDisk(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, c.Put("m", "prompt-a", "A"))
	require.NoError(t, c.Put("m", "prompt-b", "B"))
	require.NoError(t, c.Close())

	reopened, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	_, ok := reopened.Get("m", "prompt-a")
	assert.False(t, ok, "memory is empty until Load")

	n, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, ok := reopened.Get("m", "prompt-b")
	require.True(t, ok)
	assert.Equal(t, "B", v)
}

func TestDoCallsFetchOncePerKey(t *testing.T) {
	c, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer c.Close()

	var calls int32
	fetch := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "done", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := c.Do("m", "conv", fetch)
			assert.NoError(t, err)
			assert.Equal(t, "done", v)
		}()
	}
	wg.Wait()

	v, hit, err := c.Do("m", "conv", fetch)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "done", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoDoesNotCacheErrors(t *testing.T) {
	c, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer c.Close()

	boom := errors.New("boom")
	_, _, err = c.Do("m", "conv", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}

func TestKeyJoinsModelAndPrompt(t *testing.T) {
	assert.Equal(t, "gpt-4\n[]", Key("gpt-4", "[]"))
	assert.Len(t, storageKey("anything"), 64)
}
