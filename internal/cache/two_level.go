package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/sirupsen/logrus"

	"github.com/mhsenam/rentmio/internal/utils"
)

const (
	DefaultL1TTL = 5 * time.Minute
	DefaultL2TTL = 15 * time.Minute

	generationTTL = 30 * time.Second
)

// TwoLevel is an in-process ccache in front of an optional shared Store.
// Values are JSON encoded. Keys live in namespaces whose generation can be
// bumped to invalidate everything cached under them at once.
type TwoLevel struct {
	l1    *ccache.Cache[[]byte]
	l2    Store
	l1TTL time.Duration
	l2TTL time.Duration

	mu   sync.Mutex
	gens map[string]string
}

// New builds a cache; l2 may be nil for a single-process deployment.
func New(l2 Store) *TwoLevel {
	return &TwoLevel{
		l1:    ccache.New(ccache.Configure[[]byte]().MaxSize(1000)),
		l2:    l2,
		l1TTL: DefaultL1TTL,
		l2TTL: DefaultL2TTL,
		gens:  map[string]string{},
	}
}

// Key is prefix + md5 of the sorted params.
func Key(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(":")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(params[k])
	}

	hash := md5.Sum([]byte(builder.String()))
	return prefix + ":" + hex.EncodeToString(hash[:])
}

// GetJSON loads key in namespace ns into dst and reports a hit.
func (c *TwoLevel) GetJSON(ctx context.Context, ns, key string, dst any) bool {
	full := c.fullKey(ctx, ns, key)

	if item := c.l1.Get(full); item != nil && !item.Expired() {
		if err := json.Unmarshal(item.Value(), dst); err == nil {
			return true
		}
	}
	if c.l2 == nil {
		return false
	}

	data, ok, err := c.l2.Get(ctx, full)
	if err != nil {
		utils.Logger.WithError(err).WithField("key", full).Warn("L2 cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		utils.Logger.WithError(err).WithField("key", full).Warn("L2 cache entry is corrupt")
		return false
	}
	c.l1.Set(full, data, c.l1TTL)
	return true
}

// SetJSON stores v in both levels. Failures are logged, never returned.
func (c *TwoLevel) SetJSON(ctx context.Context, ns, key string, v any) {
	full := c.fullKey(ctx, ns, key)

	data, err := json.Marshal(v)
	if err != nil {
		utils.Logger.WithError(err).WithField("key", full).Warn("cache encode failed")
		return
	}
	c.l1.Set(full, data, c.l1TTL)
	if c.l2 != nil {
		if err := c.l2.Set(ctx, full, data, c.l2TTL); err != nil {
			utils.Logger.WithError(err).WithField("key", full).Warn("L2 cache write failed")
		}
	}
}

// Invalidate bumps the namespace generation so earlier keys are never read again.
func (c *TwoLevel) Invalidate(ctx context.Context, ns string) {
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)

	c.mu.Lock()
	c.gens[ns] = gen
	c.mu.Unlock()

	c.l1.DeletePrefix(ns + "@")
	c.l1.Set(genKey(ns), []byte(gen), generationTTL)
	if c.l2 != nil {
		if err := c.l2.Set(ctx, genKey(ns), []byte(gen), 0); err != nil {
			utils.Logger.WithError(err).WithField("namespace", ns).Warn("L2 generation bump failed")
		}
	}
	utils.Logger.WithFields(logrus.Fields{"namespace": ns, "generation": gen}).Debug("cache namespace invalidated")
}

func (c *TwoLevel) fullKey(ctx context.Context, ns, key string) string {
	return ns + "@" + c.generation(ctx, ns) + ":" + key
}

func (c *TwoLevel) generation(ctx context.Context, ns string) string {
	if item := c.l1.Get(genKey(ns)); item != nil && !item.Expired() {
		return string(item.Value())
	}
	if c.l2 != nil {
		if data, ok, err := c.l2.Get(ctx, genKey(ns)); err == nil && ok {
			c.l1.Set(genKey(ns), data, generationTTL)
			c.mu.Lock()
			c.gens[ns] = string(data)
			c.mu.Unlock()
			return string(data)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	gen, ok := c.gens[ns]
	if !ok {
		gen = "0"
		c.gens[ns] = gen
	}
	return gen
}

func genKey(ns string) string { return "gen:" + ns }
