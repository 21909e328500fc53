package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmer_Warm(t *testing.T) {
	rec := newLookupRecorder()
	d, _ := newTestDocs(t, map[string]string{
		"v1/a.mdx": "A\n",
		"v1/b.mdx": "B\n",
		"v2/c.mdx": "C\n",
	}, WithRecorder(rec))

	w, err := NewWarmer(d, []string{"en"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	n, err := w.Warm(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = d.List(t.Context(), "v1", "en")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.hits["list"])
}

func TestWarmer_Schedule(t *testing.T) {
	d, _ := newTestDocs(t, map[string]string{"v1/a.mdx": "A\n"})
	w, err := NewWarmer(d, nil, nil)
	require.NoError(t, err)

	_, err = w.Schedule(0)
	require.Error(t, err)

	id, err := w.Schedule(time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	w.Start()
	assert.Eventually(t, func() bool { return d.Stats().Entries > 0 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, w.Stop())
}
