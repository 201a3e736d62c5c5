package inflate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/pthm/inflate/lib/encoding"
)

// CachingFetcher serves repeated fetches of the same identifier from memory
// and, optionally, from a DiskStore, falling through to Next on a miss.
// Failures are never cached.
type CachingFetcher struct {
	Next   Fetcher
	mem    *gocache.Cache
	disk   *DiskStore
	logger *zap.Logger
}

// NewCachingFetcher wraps next with an in-memory cache holding entries for
// ttl. disk may be nil.
func NewCachingFetcher(next Fetcher, ttl time.Duration, disk *DiskStore) *CachingFetcher {
	return &CachingFetcher{
		Next:   next,
		mem:    gocache.New(ttl, 2*ttl),
		disk:   disk,
		logger: Logger(),
	}
}

// Fetch answers from cache when possible.
func (c *CachingFetcher) Fetch(ctx context.Context, id string, done func(string, error)) {
	if v, ok := c.mem.Get(id); ok {
		done(v.(string), nil)
		return
	}
	if c.disk != nil {
		if text, ok := c.disk.Load(id); ok {
			c.mem.SetDefault(id, text)
			done(text, nil)
			return
		}
	}

	c.Next.Fetch(ctx, id, func(text string, err error) {
		if err == nil {
			c.mem.SetDefault(id, text)
			if c.disk != nil {
				if serr := c.disk.Store(id, text); serr != nil {
					c.logger.Warn("cache: store failed", zap.String("id", id), zap.Error(serr))
				}
			}
		}
		done(text, err)
	})
}

// Forget drops id from both tiers.
func (c *CachingFetcher) Forget(id string) {
	c.mem.Delete(id)
	if c.disk != nil {
		c.disk.Delete(id)
	}
}

type diskEntry struct {
	ID     string `msgpack:"id"`
	Text   string `msgpack:"text"`
	Stored int64  `msgpack:"stored"`
}

// DiskStore keeps fetched resources as sealed files, one per identifier.
// Entries that fail verification, belong to another identifier or are older
// than the TTL are treated as misses.
type DiskStore struct {
	dir       string
	enc       *encoding.Encoder
	sensitive bool
	ttl       time.Duration
	now       func() time.Time
}

// NewDiskStore creates dir if needed. Entries are signed with key, or
// encrypted when sensitive is true. A zero ttl keeps entries forever.
func NewDiskStore(dir string, key []byte, sensitive bool, ttl time.Duration) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("inflate: creating cache dir: %w", err)
	}
	enc, err := encoding.NewEncoder(key)
	if err != nil {
		return nil, fmt.Errorf("inflate: cache encoder: %w", err)
	}
	return &DiskStore{
		dir:       dir,
		enc:       enc,
		sensitive: sensitive,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

func (s *DiskStore) path(id string) string {
	sum := sha256.Sum256([]byte(id))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".entry")
}

// Load returns the cached text for id.
func (s *DiskStore) Load(id string) (string, bool) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return "", false
	}
	var e diskEntry
	if err := s.enc.Decode(string(data), s.sensitive, &e); err != nil {
		return "", false
	}
	if e.ID != id {
		return "", false
	}
	if s.ttl > 0 && s.now().Sub(time.Unix(e.Stored, 0)) > s.ttl {
		return "", false
	}
	return e.Text, true
}

// Store seals text and writes it for id.
func (s *DiskStore) Store(id, text string) error {
	sealed, err := s.enc.Encode(diskEntry{ID: id, Text: text, Stored: s.now().Unix()}, s.sensitive)
	if err != nil {
		return err
	}
	tmp := s.path(id) + ".tmp"
	if err := os.WriteFile(tmp, []byte(sealed), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(id))
}

// Delete removes the entry for id.
func (s *DiskStore) Delete(id string) {
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		Logger().Warn("cache: delete failed", zap.String("id", id), zap.Error(err))
	}
}
