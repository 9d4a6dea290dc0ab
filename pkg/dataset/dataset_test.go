package dataset

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/crossplot/pkg/cache"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/httputil"
)

var files = map[string]string{
	"/imdb.csv":                 "Title,Rating,Genre\nA,8.1,Drama\nB,7.5,Comedy\nC,NA,Drama\n",
	"/les_miserables/nodes.csv": "name,group,value\nMyriel,1,10\nNapoleon,1,2\n",
	"/les_miserables/links.csv": "source,target,value\nNapoleon,Myriel,1\n",
	"/pbmc3k/exp.csv":           ",CD3E,MS4A1\nT,2.5,0.1\nB,0.2,3.1\n",
	"/pbmc3k/pct_cells.csv":     ",CD3E,MS4A1\nT,0.9,0.01\nB,0.05,0.8\n",
	"/pbmc3k/count.csv":         ",n\nT,1100\nB,340\n",
}

func newServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newLoader(t *testing.T, srv *httptest.Server, backend cache.Cache) *Loader {
	t.Helper()
	return NewLoader(
		WithBaseURL(srv.URL+"/"),
		WithCache(backend),
		WithClient(httputil.NewClient(httputil.WithRetry(1, time.Millisecond))),
	)
}

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(files["/pbmc3k/exp.csv"]), "exp", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"CD3E", "MS4A1"}, tbl.Columns)
	assert.Equal(t, []string{"T", "B"}, tbl.RowNames())
	assert.Equal(t, 2, tbl.Len())

	m, err := tbl.Numeric()
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.InDelta(t, 3.1, m.At(1, 1), 1e-9)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "empty", false)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = ReadCSV(strings.NewReader("a,b\n1,2,3\n"), "ragged", false)
	assert.True(t, errors.Is(err, errors.ErrCodeSizeMismatch))

	_, err = ReadCSV(strings.NewReader("a\n1\n"), "idx", true)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestTableColumns(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(files["/imdb.csv"]), "imdb", false)
	require.NoError(t, err)

	ratings, err := tbl.Floats("Rating")
	require.NoError(t, err)
	assert.Equal(t, 8.1, ratings[0])
	assert.True(t, math.IsNaN(ratings[2]))

	_, err = tbl.Floats("Genre")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidType))

	_, err = tbl.Column("Year")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	genre, err := tbl.Categorical("Genre")
	require.NoError(t, err)
	assert.Equal(t, "Comedy", genre.Label(1, 0))
	assert.Equal(t, []string{"0", "1", "2"}, tbl.RowNames())
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"imdb", "pbmc3k", "oncoprint", "cooking_oils", "mouse_embryo", "seq_align", "les_miserables"} {
		e, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, e.Files, name)
	}
	_, err := Lookup("iris")
	assert.True(t, errors.Is(err, errors.ErrCodeDatasetNotFound))
	assert.Len(t, Catalog(), len(Names()))
}

func TestLoaderMemoizes(t *testing.T) {
	srv, hits := newServer(t)
	l := newLoader(t, srv, nil)
	ctx := context.Background()

	ds, err := l.Load(ctx, "les_miserables")
	require.NoError(t, err)
	assert.Equal(t, []string{"nodes", "links"}, ds.Tables())
	assert.Equal(t, int32(2), hits.Load())

	again, err := l.Load(ctx, "les_miserables")
	require.NoError(t, err)
	assert.Same(t, ds, again)
	assert.Equal(t, int32(2), hits.Load())
	assert.True(t, l.Cached("les_miserables"))

	nodes, err := ds.Table("nodes")
	require.NoError(t, err)
	assert.Equal(t, 2, nodes.Len())
	_, err = ds.Table("edges")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestLoaderInvalidate(t *testing.T) {
	srv, hits := newServer(t)
	backend, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	l := newLoader(t, srv, backend)
	ctx := context.Background()

	_, err = l.Load(ctx, "imdb")
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())

	// a fresh loader sharing the backend reads from the cache
	other := newLoader(t, srv, backend)
	tbl, err := other.LoadTable(ctx, "imdb", "")
	require.NoError(t, err)
	assert.Equal(t, "imdb", tbl.Name)
	assert.Equal(t, int32(1), hits.Load())

	require.NoError(t, l.Invalidate(ctx, "imdb"))
	assert.False(t, l.Cached("imdb"))
	_, err = l.Load(ctx, "imdb")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	assert.True(t, errors.Is(l.Invalidate(ctx, "iris"), errors.ErrCodeDatasetNotFound))
}

func TestLoaderErrors(t *testing.T) {
	srv, _ := newServer(t)
	l := newLoader(t, srv, nil)
	ctx := context.Background()

	_, err := l.Load(ctx, "iris")
	assert.True(t, errors.Is(err, errors.ErrCodeDatasetNotFound))

	_, err = l.Load(ctx, "oncoprint")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	assert.False(t, l.Cached("oncoprint"))
}
