package crawl_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/webdex/webdex/crawl"
)

func TestFrontier_Push_RejectsDuplicateURLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()

	assert.True(t, f.Push("https://a.test/docs/page1", 0), "first push should succeed")
	assert.False(t, f.Push("https://a.test/docs/page1", 1), "duplicate URL should be rejected")
}

func TestFrontier_Push_DedupsByNormalizedURL(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()

	assert.True(t, f.Push("https://a.test/page#intro", 0))
	assert.False(t, f.Push("https://a.test/page#usage", 0), "URLs differing only by fragment are duplicates")
	assert.False(t, f.Push("HTTPS://A.TEST/page", 0), "scheme and host casing is normalized")
}

func TestFrontier_PopBatch_FIFO(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()
	for i := 0; i < 5; i++ {
		f.Push(fmt.Sprintf("https://a.test/p%d", i), i)
	}

	batch := f.PopBatch(3)
	assert.Len(t, batch, 3)
	assert.Equal(t, "https://a.test/p0", batch[0].URL)
	assert.Equal(t, "https://a.test/p1", batch[1].URL)
	assert.Equal(t, "https://a.test/p2", batch[2].URL)
	assert.Equal(t, 2, f.Len())

	batch = f.PopBatch(10)
	assert.Len(t, batch, 2)
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.PopBatch(1))
}

func TestFrontier_Seen(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()
	f.Push("https://a.test/page", 0)

	assert.True(t, f.Seen("https://a.test/page#frag"))
	assert.False(t, f.Seen("https://a.test/other"))
}
