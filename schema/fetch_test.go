package schema

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/pkg/errors"
)

func schemaServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/person.json":
			w.Header().Set("Content-Type", "application/schema+json")
			_, _ = w.Write([]byte(personSchema))
		case "/pet.yaml":
			_, _ = w.Write([]byte("type: object\nproperties:\n  name:\n    type: string\n"))
		case "/broken.json":
			_, _ = w.Write([]byte("{\n  - nope"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherLoad(t *testing.T) {
	is := is.New(t)
	var hits atomic.Int32
	srv := schemaServer(t, &hits)
	dir := t.TempDir()

	f := NewFetcher(NewStore(), srv.Client(), dir)
	n, err := f.Load(srv.URL + "/person.json#/properties/name")
	is.NoErr(err)
	is.Equal(n.Type, TypeString)
	n, err = f.Load(srv.URL + "/person.json#/definitions/color")
	is.NoErr(err)
	is.True(n.HasEnum())
	is.Equal(hits.Load(), int32(1)) // the document is kept in the store

	n, err = f.Load(srv.URL + "/pet.yaml#")
	is.NoErr(err)
	is.Equal(n.Type, TypeObject)
	is.Equal(hits.Load(), int32(2))

	// a missing pointer in a known document is not fetched again
	_, err = f.Load(srv.URL + "/person.json#/properties/missing")
	is.True(errors.Is(err, ErrNotFound))
	is.Equal(hits.Load(), int32(2))

	_, err = os.Stat(f.path(srv.URL + "/person.json"))
	is.NoErr(err)
}

func TestFetcherUsesCache(t *testing.T) {
	is := is.New(t)
	var hits atomic.Int32
	srv := schemaServer(t, &hits)
	dir := t.TempDir()

	_, err := NewFetcher(NewStore(), srv.Client(), dir).Load(srv.URL + "/person.json#")
	is.NoErr(err)
	is.Equal(hits.Load(), int32(1))

	f := NewFetcher(NewStore(), srv.Client(), dir)
	n, err := f.Load(srv.URL + "/person.json#")
	is.NoErr(err)
	is.Equal(n.Title, "Person")
	is.Equal(hits.Load(), int32(1))

	f = NewFetcher(NewStore(), srv.Client(), dir)
	f.Disable()
	_, err = f.Load(srv.URL + "/person.json#")
	is.NoErr(err)
	is.Equal(hits.Load(), int32(2))

	f = NewFetcher(NewStore(), srv.Client(), dir)
	f.SetLifetime(-time.Second)
	_, err = f.Load(srv.URL + "/person.json#")
	is.NoErr(err)
	is.Equal(hits.Load(), int32(3))
}

func TestFetcherErrors(t *testing.T) {
	is := is.New(t)
	var hits atomic.Int32
	srv := schemaServer(t, &hits)
	dir := t.TempDir()
	f := NewFetcher(NewStore(), srv.Client(), dir)

	_, err := f.Load(srv.URL + "/missing.json#")
	is.True(errors.Is(err, ErrNotFound))

	_, err = f.Load(srv.URL + "/broken.json#")
	is.True(err != nil)
	_, err = os.Stat(f.path(srv.URL + "/broken.json"))
	is.True(os.IsNotExist(err))

	// only http documents are fetched
	before := hits.Load()
	_, err = f.Load("file:///tmp/person.json#")
	is.True(errors.Is(err, ErrNotFound))
	_, err = f.Load("urn:example:person#")
	is.True(errors.Is(err, ErrNotFound))
	is.Equal(hits.Load(), before)
}

func TestFetcherPrefersStore(t *testing.T) {
	is := is.New(t)
	var hits atomic.Int32
	srv := schemaServer(t, &hits)
	store := NewStore()
	is.NoErr(store.Add(srv.URL+"/person.json", []byte(`{"type":"string"}`)))
	f := NewFetcher(store, srv.Client(), t.TempDir())
	n, err := f.Load(srv.URL + "/person.json#")
	is.NoErr(err)
	is.Equal(n.Type, TypeString)
	is.Equal(hits.Load(), int32(0))
}

func TestFileCacheClean(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	fc := &fileCache{dir: dir, lifetime: time.Hour, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	is.NoErr(fc.Clean()) // nothing cached yet

	fresh := fc.path("http://example.com/fresh.json")
	stale := fc.path("http://example.com/stale.json")
	fc.stash(fresh, []byte("{}"))
	fc.stash(stale, []byte("{}"))
	old := time.Now().Add(-2 * time.Hour)
	is.NoErr(os.Chtimes(stale, old, old))

	is.NoErr(fc.Clean())
	_, err := os.Stat(fresh)
	is.NoErr(err)
	_, err = os.Stat(stale)
	is.True(os.IsNotExist(err))
	is.Equal(filepath.Dir(fresh), filepath.Join(dir, "schemas"))

	_, err = fc.cached(fresh, 1)
	is.True(errors.Is(err, ErrFileTooBig))
	b, err := fc.cached(fresh, 0)
	is.NoErr(err)
	is.Equal(string(b), "{}")
}
