// Package driver implements the lazy-fetch executor: Execute-once runs one
// chain against whatever data is already in hand, Execute-fully drives it to
// a fixed point by downloading missing scopes between iterations (spec.md
// §4.6). Grounded on original_source/sa/shell/driver.py's execute_once/
// execute_fully loop, with the observability wrapper (one span per
// iteration, structured log events, counters) adapted from
// runtime/registry/observability.go's Observability/OperationEvent pattern.
package driver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/sebitommy123/sa/cache"
	"github.com/sebitommy123/sa/parse"
	"github.com/sebitommy123/sa/provider"
	"github.com/sebitommy123/sa/qerr"
	"github.com/sebitommy123/sa/scope"
	"github.com/sebitommy123/sa/state"
	"github.com/sebitommy123/sa/telemetry"
	"github.com/sebitommy123/sa/value"
)

const defaultCacheTTL = 5 * time.Minute

// Driver owns the configured providers, a payload cache, and per-provider
// rate limiters, and runs queries to a fixed point over them.
type Driver struct {
	entries []state.Entry

	cache cache.Cache

	recorder telemetry.Recorder

	limiters map[string]*rate.Limiter
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithCache installs a payload cache consulted before (and populated after)
// every FetchLazy call, keyed on (provider, scope).
func WithCache(c cache.Cache) Option { return func(d *Driver) { d.cache = c } }

// WithRecorder installs the observability sink for iteration spans and
// scope-download log lines/counters; defaults to a no-op.
func WithRecorder(r telemetry.Recorder) Option { return func(d *Driver) { d.recorder = r } }

// WithProviderRateLimit throttles download_scope calls against one provider
// to r events per second with the given burst (spec.md §9's extension point
// for "a provider is slow/rate-limited"). Providers with no configured
// limit are unthrottled.
func WithProviderRateLimit(providerID string, r rate.Limit, burst int) Option {
	return func(d *Driver) { d.limiters[providerID] = rate.NewLimiter(r, burst) }
}

// New calls Hello on every provider, eagerly fetches AllData from every
// ModeAllAtOnce provider (spec.md §2's "initial bulk" step), and returns a
// ready Driver plus the initial aggregate ObjectList. providers maps each
// provider's scope-handle id (scope.Scope.Provider) to its implementation.
func New(ctx context.Context, providers map[string]provider.Provider, opts ...Option) (*Driver, *value.ObjectList, error) {
	d := &Driver{limiters: make(map[string]*rate.Limiter)}
	for _, opt := range opts {
		opt(d)
	}
	if d.recorder == nil {
		d.recorder = telemetry.NewNoopRecorder()
	}

	allData, err := value.NewObjectList(nil)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var entries []state.Entry
	for _, id := range ids {
		p := providers[id]
		capability, err := p.Hello(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s: hello: %w", id, err)
		}
		entries = append(entries, state.Entry{ID: id, Provider: p, Capability: capability})

		if capability.Mode != provider.ModeAllAtOnce {
			continue
		}
		objects, err := p.AllData(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s: all_data: %w", id, err)
		}
		list, err := objectListFromWire(objects)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s: %w", id, err)
		}
		allData, err = value.Combine(allData, list)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s: %w", id, err)
		}
	}
	d.entries = entries
	return d, allData, nil
}

// ExecuteOnce runs query against allData once (spec.md §4.6, steps 1-5):
// ObjectList overlays are reset, a fresh QueryState is built, the query is
// parsed and evaluated, and any QueryError is caught and rendered as an
// "Error: ..." string result rather than a Go error.
func (d *Driver) ExecuteOnce(allData *value.ObjectList, query string) (value.Value, *state.QueryState) {
	allData.Reset()
	st := state.New(d.entries, allData)

	parsed, err := parse.Parse(query)
	if err != nil {
		return value.String("Error: " + errorMessage(err)), st
	}

	chain, ok := parsed.(*value.Chain)
	if !ok {
		return parsed, st
	}

	result, err := chain.Run(allData, st)
	if err != nil {
		return value.String("Error: " + errorMessage(err)), st
	}
	return result, st
}

// errorMessage renders a QueryError the way spec.md §7 describes ("Error:
// ..."), falling back to err.Error() for anything else.
func errorMessage(err error) string {
	if qe, ok := err.(*qerr.QueryError); ok {
		return qe.Error()
	}
	return err.Error()
}

// ExecuteFully drives ExecuteOnce to a fixed point (spec.md §4.6): after
// each run it downloads every scope the query still needs that has not
// already been downloaded successfully (a scope whose download failed is
// tried again next round), merges whatever came back into allData, and
// reruns. It returns once a run's needed scopes are all satisfied, or an
// error if a download round made no progress.
func (d *Driver) ExecuteFully(ctx context.Context, allData *value.ObjectList, query string) (value.Value, *state.QueryState, error) {
	downloaded := scope.New()

	for {
		result, st := d.ExecuteOnce(allData, query)
		final := st.FinalNeededScopes()
		missing := final.Minus(downloaded)
		if missing.Len() == 0 {
			return result, st, nil
		}

		ctx, span := d.recorder.StartIteration(ctx, missing.Len(), downloaded.Len())
		anyDownloaded := false
		for _, sc := range missing.List() {
			entry, ok := d.entryFor(sc.Provider)
			if !ok {
				continue
			}
			objects, ft, err := d.downloadScope(ctx, entry, sc)
			d.recorder.LogFetch(ctx, span, sc.Type, ft, err)
			if err != nil || ft.Error != "" {
				continue
			}

			fresh := dropKnown(objects, allData)
			list, err := groupRawObjects(fresh)
			if err != nil {
				d.recorder.EndIteration(span, err)
				return nil, nil, err
			}
			merged, err := value.Combine(allData, list)
			if err != nil {
				d.recorder.EndIteration(span, err)
				return nil, nil, err
			}
			*allData = *merged
			downloaded = downloaded.Union(scope.New(sc))
			anyDownloaded = true
		}
		d.recorder.EndIteration(span, nil)

		if !anyDownloaded {
			stillMissing := st.FinalNeededScopes().Minus(downloaded)
			if scopesEqual(stillMissing, missing) {
				return nil, nil, fmt.Errorf("Failed to download all scopes: %s", stillMissing.String())
			}
		}
	}
}

func (d *Driver) entryFor(id string) (state.Entry, bool) {
	for _, e := range d.entries {
		if e.ID == id {
			return e, true
		}
	}
	return state.Entry{}, false
}

// downloadScope runs one scope's FetchLazy call (spec.md §4.6, download-scope),
// consulting the payload cache first and rate-limiting per provider.
func (d *Driver) downloadScope(ctx context.Context, entry state.Entry, sc scope.Scope) ([]value.RawObject, telemetry.FetchTelemetry, error) {
	ft := telemetry.FetchTelemetry{Provider: entry.ID}
	key := scopeCacheKey(entry.ID, sc)

	if d.cache != nil {
		if cached, err := d.cache.Get(ctx, key); err == nil && cached != nil {
			objs, err := rawObjectsFromWireSlice(cached)
			if err == nil {
				ft.ObjectCount = len(objs)
				ft.Extra = map[string]any{"cache_hit": true}
				return objs, ft, nil
			}
		}
	}

	if limiter, ok := d.limiters[entry.ID]; ok {
		if err := limiter.Wait(ctx); err != nil {
			ft.Error = err.Error()
			return nil, ft, err
		}
	}

	req := provider.FetchRequest{
		Type:       sc.Type,
		FieldsStar: sc.FieldsStar,
		Fields:     sc.Fields,
		Conditions: fetchConditions(sc.Conditions),
		IDTypes:    sc.IDTypes,
	}

	start := time.Now()
	resp, err := entry.Provider.FetchLazy(ctx, req)
	ft.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		ft.Error = err.Error()
		return nil, ft, err
	}
	if resp.Error != "" {
		ft.Error = resp.Error
		return nil, ft, nil
	}

	ft.ObjectCount = len(resp.Objects)
	if d.cache != nil {
		_ = d.cache.Set(ctx, key, resp.Objects, defaultCacheTTL)
	}

	objs, err := rawObjectsFromWireSlice(resp.Objects)
	if err != nil {
		ft.Error = err.Error()
		return nil, ft, err
	}
	return objs, ft, nil
}

func fetchConditions(conds []scope.Condition) []provider.FetchCondition {
	out := make([]provider.FetchCondition, len(conds))
	for i, c := range conds {
		out[i] = provider.FetchCondition{Field: c.Field, Op: c.Op, Value: c.Value}
	}
	return out
}

func scopeCacheKey(providerID string, sc scope.Scope) string {
	return providerID + "|" + sc.Key()
}

// dropKnown filters out objects whose (id, type, source) is already present
// in allData, per spec.md §4.6's "drop objects whose unique_ids already
// intersect the current ObjectList" rule.
func dropKnown(objects []value.RawObject, allData *value.ObjectList) []value.RawObject {
	existing := make(map[value.UniqueID]bool)
	for _, uid := range allData.UniqueIDs() {
		existing[uid] = true
	}
	var out []value.RawObject
	for _, o := range objects {
		keep := false
		for _, uid := range o.UniqueIDs() {
			if !existing[uid] {
				keep = true
				break
			}
		}
		if keep {
			out = append(out, o)
		}
	}
	return out
}

// scopesEqual reports whether a and b contain exactly the same Scope values,
// compared by Key (spec.md §4.6 step 5, "unchanged from missing").
func scopesEqual(a, b scope.Scopes) bool {
	al, bl := a.List(), b.List()
	if len(al) != len(bl) {
		return false
	}
	for i := range al {
		if al[i].Key() != bl[i].Key() {
			return false
		}
	}
	return true
}

