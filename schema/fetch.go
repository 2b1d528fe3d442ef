package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNoCache      = errors.New("caching is disabled")
	ErrFileTooBig   = errors.New("cached file is too large")
	ErrCacheExpired = errors.New("cached file is too old")
)

// MaxDocumentSize is the largest remote document that will be read.
const MaxDocumentSize = 8 << 20

// Fetcher is a Loader that downloads documents missing from a Store when their
// base URI is an http or https URL. Downloaded documents are kept in a file
// cache.
type Fetcher struct {
	store  *Store
	client *http.Client
	ctx    context.Context
	logger *slog.Logger
	*fileCache
}

// NewFetcher creates a Fetcher with a cache rooted at dir.
func NewFetcher(store *Store, client *http.Client, dir string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	logger := slog.Default()
	return &Fetcher{
		store:  store,
		client: client,
		ctx:    context.Background(),
		logger: logger,
		fileCache: &fileCache{
			dir:      dir,
			lifetime: 24 * time.Hour,
			logger:   logger,
		},
	}
}

func (f *Fetcher) WithContext(ctx context.Context) *Fetcher {
	f.ctx = ctx
	return f
}

func (f *Fetcher) SetLogger(l *slog.Logger) {
	f.logger = l
	f.fileCache.logger = l
}

// SetLifetime changes how long a cached document is used before it is
// downloaded again.
func (f *Fetcher) SetLifetime(d time.Duration) { f.lifetime = d }

func (f *Fetcher) Load(uri string) (*Node, error) {
	n, err := f.store.Load(uri)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return n, err
	}
	base := StripFragment(uri)
	if f.store.Has(base) || !isRemote(base) {
		return nil, err
	}
	doc, err := f.fetch(base)
	if err != nil {
		return nil, err
	}
	if err = f.store.Add(base, doc); err != nil {
		// a bad download should not stick around
		f.remove(f.path(base))
		return nil, err
	}
	return f.store.Load(uri)
}

func (f *Fetcher) fetch(base string) ([]byte, error) {
	path := f.path(base)
	b, err := f.cached(path, MaxDocumentSize)
	if err == nil {
		f.logger.Debug("using cached schema", "uri", base, "file", path)
		return b, nil
	}
	req, err := http.NewRequestWithContext(f.ctx, http.MethodGet, base, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/schema+json, application/json, application/yaml;q=0.9, */*;q=0.5")
	f.logger.Debug("fetching schema", "uri", base)
	res, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %q", base)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrNotFound, "GET %s: %s", base, res.Status)
	}
	b, err = io.ReadAll(io.LimitReader(res.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", base)
	}
	if len(b) > MaxDocumentSize {
		return nil, errors.Errorf("%q is larger than %d bytes", base, MaxDocumentSize)
	}
	f.stash(path, b)
	return b, nil
}

func isRemote(base string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && len(u.Host) > 0
}

type fileCache struct {
	dir      string
	lifetime time.Duration
	disabled bool
	logger   *slog.Logger
}

func (fc *fileCache) Disable() { fc.disabled = true }

// path maps a document URI to its cache file.
func (fc *fileCache) path(uri string) string {
	sum := sha256.Sum256([]byte(uri))
	return filepath.Join(fc.dir, "schemas", hex.EncodeToString(sum[:]))
}

func (fc *fileCache) cached(path string, maxSize int64) ([]byte, error) {
	if fc.disabled {
		return nil, ErrNoCache
	}
	if _, err := fc.check(path, fc.lifetime, maxSize); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (fc *fileCache) stash(path string, b []byte) {
	if fc.disabled {
		return
	}
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0755)
	}
	err := os.WriteFile(path, b, 0644)
	if err != nil {
		_ = os.Remove(path)
		fc.logger.Warn("failed to write cache file", slog.Any("error", err))
	}
}

func (fc *fileCache) remove(path string) {
	if fc.disabled {
		return
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		fc.logger.Warn("failed to remove cache file", slog.Any("error", err))
	}
}

func (fc *fileCache) check(path string, exp time.Duration, maxSize int64) (stat fs.FileInfo, err error) {
	stat, err = os.Stat(path)
	if err != nil {
		return
	}
	if maxSize != 0 && stat.Size() > maxSize {
		return stat, ErrFileTooBig
	}
	if time.Since(stat.ModTime()) > exp {
		_ = os.Remove(path)
		return stat, ErrCacheExpired
	}
	return stat, nil
}

// Clean removes every cached document older than the cache lifetime.
func (fc *fileCache) Clean() error {
	root := filepath.Join(fc.dir, "schemas")
	err := filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > fc.lifetime {
			fc.logger.Debug("cleaning cached file", "file", path)
			err = os.Remove(path)
			if err != nil && !os.IsNotExist(err) {
				return err
			}
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return errors.WithStack(err)
}
