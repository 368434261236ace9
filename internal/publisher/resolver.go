// Package publisher resolves the vendor of an executable from its version
// resource. Resolution never fails: anything that prevents reading a
// non-blank company name yields startup.UnknownPublisher.
package publisher

import (
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// DefaultCacheSize bounds the number of memoised lookups.
const DefaultCacheSize = 512

// cacheKey invalidates a cached answer when the file is replaced.
type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

// Resolver reads CompanyName from executable version metadata.
type Resolver struct {
	cache *lru.Cache[cacheKey, string]
	read  func(path string) (string, error)
	log   zerolog.Logger
}

var _ startup.PublisherResolver = (*Resolver)(nil)

// New creates a Resolver caching up to size results. A non-positive size
// selects DefaultCacheSize.
func New(size int, log zerolog.Logger) *Resolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[cacheKey, string](size)
	return &Resolver{
		cache: cache,
		read:  companyName,
		log:   log,
	}
}

// Resolve returns the company name recorded in path's version resource, or
// startup.UnknownPublisher.
func (r *Resolver) Resolve(path string) string {
	if strings.TrimSpace(path) == "" {
		return startup.UnknownPublisher
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return startup.UnknownPublisher
	}

	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime()}
	if name, ok := r.cache.Get(key); ok {
		return name
	}

	name := startup.UnknownPublisher
	company, err := r.read(path)
	if err != nil {
		r.log.Debug().Err(err).Str("path", path).Msg("failed to read version info")
	} else if company = strings.TrimSpace(company); company != "" {
		name = company
	}

	r.cache.Add(key, name)
	return name
}
