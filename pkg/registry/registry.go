// Package registry answers "which PHP versions exist" by combining the
// Homebrew client with the on-disk snapshot cache.
//
// Installed versions are always queried live (the list is cheap and must
// be current). Available versions prefer the cached snapshot inside its
// TTL, fall back to a live search, and degrade to a stale snapshot when
// Homebrew is unreachable, so `phpswitch list` keeps working offline.
package registry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/phpswitch/phpswitch/pkg/brew"
	"github.com/phpswitch/phpswitch/pkg/brewcache"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// Item is one version in an availability listing.
type Item struct {
	Version   phpver.Version
	Installed bool
}

// Listing is the assembled answer to "what can I switch to".
type Listing struct {
	Items     []Item
	FetchedAt time.Time

	// Stale marks a listing served from an expired snapshot because the
	// registry was unreachable.
	Stale bool
}

// Age returns how long ago the listing's data was fetched.
func (l Listing) Age() time.Duration {
	return time.Since(l.FetchedAt)
}

// Client serves version listings.
type Client struct {
	brew  *brew.Brew
	cache *brewcache.Store
	log   *log.Logger
}

// New creates a registry client.
func New(b *brew.Brew, cache *brewcache.Store, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{brew: b, cache: cache, log: logger}
}

// Installed returns the installed runtimes, live from Homebrew.
func (c *Client) Installed(ctx context.Context) ([]brew.Installed, error) {
	return c.brew.ListInstalled(ctx)
}

// Available lists every PHP version Homebrew knows about.
//
// With useCache, a fresh snapshot short-circuits the slow search. On a
// miss (or with useCache disabled) the live search runs and overwrites the
// snapshot. If the search fails but any snapshot exists, the snapshot is
// served with Stale set instead of an error; the error surfaces only when
// there is nothing at all to show.
func (c *Client) Available(ctx context.Context, useCache bool) (Listing, error) {
	if useCache {
		if snap, state := c.cache.Load(); state == brewcache.Fresh {
			c.log.Debugf("available versions served from cache (age %s)", snap.Age().Round(time.Second))
			return fromSnapshot(snap, false), nil
		}
	}

	versions, err := c.brew.Search(ctx)
	if err != nil {
		if snap, state := c.cache.Load(); state != brewcache.Miss {
			c.log.Warnf("registry search failed (%v), falling back to cached listing from %s ago",
				err, snap.Age().Round(time.Minute))
			return fromSnapshot(snap, true), nil
		}
		return Listing{}, err
	}

	installed := map[string]bool{}
	if inst, err := c.brew.ListInstalled(ctx); err != nil {
		c.log.Warnf("could not determine installed versions: %v", err)
	} else {
		for _, i := range inst {
			installed[i.Version.ID] = true
		}
	}

	now := time.Now()
	listing := Listing{FetchedAt: now}
	snap := brewcache.Snapshot{FetchedAt: now}
	for _, v := range versions {
		item := Item{Version: v, Installed: installed[v.ID]}
		listing.Items = append(listing.Items, item)
		snap.Versions = append(snap.Versions, brewcache.Entry{ID: v.ID, Installed: item.Installed})
	}

	if err := c.cache.Save(ctx, snap); err != nil {
		c.log.Warnf("skipping cache write: %v", err)
	}
	return listing, nil
}

// Refresh forces a live search, overwriting any snapshot.
func (c *Client) Refresh(ctx context.Context) (Listing, error) {
	return c.Available(ctx, false)
}

// PrefetchAvailable starts Available in the background and returns a join
// function. Callers render the installed table first, then join for the
// slow part:
//
//	join := client.PrefetchAvailable(ctx, true)
//	renderInstalled(...)
//	listing, err := join()
func (c *Client) PrefetchAvailable(ctx context.Context, useCache bool) func() (Listing, error) {
	g, gctx := errgroup.WithContext(ctx)
	var listing Listing
	g.Go(func() error {
		var err error
		listing, err = c.Available(gctx, useCache)
		return err
	})
	return func() (Listing, error) {
		if err := g.Wait(); err != nil {
			return Listing{}, err
		}
		return listing, nil
	}
}

// ClearCache removes the availability snapshot.
func (c *Client) ClearCache() error {
	return c.cache.Clear()
}

// CachePath returns the snapshot file location.
func (c *Client) CachePath() string {
	return c.cache.Path()
}

func fromSnapshot(snap brewcache.Snapshot, stale bool) Listing {
	l := Listing{FetchedAt: snap.FetchedAt, Stale: stale}
	for _, e := range snap.Versions {
		v, err := phpver.FromID(e.ID)
		if err != nil {
			continue
		}
		l.Items = append(l.Items, Item{Version: v, Installed: e.Installed})
	}
	return l
}
