// Package provider defines the abstract data-source contract the lazy-fetch
// driver talks to (spec.md §6.1): a capability announcement, an initial bulk
// dump, and a conditioned lazy slice. A Provider is free to be backed by an
// HTTP endpoint, an in-process map, or anything else — package provider only
// fixes the shape of the conversation, grounded on
// original_source/sa/shell/provider_manager.py's ProviderConnection (hello/
// all_data) and the /lazy_load contract spec.md adds for scope-driven fetch.
package provider

import (
	"context"

	"github.com/sebitommy123/sa/value"
	"github.com/sebitommy123/sa/wire"
)

// Mode is a provider's advertised fetch strategy (spec.md §6.1, the "mode"
// field returned by hello).
type Mode string

const (
	// ModeAllAtOnce means the provider has no lazy_load endpoint: the
	// driver calls AllData once and never calls FetchLazy.
	ModeAllAtOnce Mode = "ALL_AT_ONCE"
	// ModeLazy means the provider answers FetchLazy requests scoped to
	// the type/fields/conditions/id_types the driver still needs.
	ModeLazy Mode = "LAZY"
)

// LazyScope is one entry of hello's lazy_loading_scopes array: the shape of
// data a LAZY provider is willing to serve, before any query has narrowed it
// further (spec.md §6.1).
type LazyScope struct {
	Type            string
	FieldsStar      bool
	Fields          []string
	FilteringFields []string
	NeedsIDTypes    bool
}

// Capability is a provider's answer to hello: its name, fetch mode, and (for
// LAZY providers) the scopes it can serve (spec.md §6.1).
type Capability struct {
	Name              string
	Mode              Mode
	LazyLoadingScopes []LazyScope
}

// FetchRequest is the body of one lazy_load call: a single narrowed scope
// demand plus whatever conditions and id_types the driver has accumulated
// for it (spec.md §6.1). PlanOnly asks the provider to describe what it
// would fetch without actually fetching it; the driver never sets it, and
// ShowPlan (operator/utility.go) reports needed scopes without contacting a
// provider.
type FetchRequest struct {
	Type            string
	FieldsStar      bool
	Fields          []string
	Conditions      []FetchCondition
	PlanOnly        bool
	IDTypes         []value.IDType
}

// FetchCondition is one (field, op, value) triple forwarded verbatim from a
// scope.Condition; provider lives below package scope in the import graph,
// so it cannot reference scope.Condition directly and instead takes the
// three parts.
type FetchCondition struct {
	Field string
	Op    string
	Value value.Value
}

// FetchResponse is a lazy_load reply: the objects satisfying the request, an
// optional human-readable plan description (for PlanOnly requests), and an
// optional provider-side error string (spec.md §7, ProviderError — reported
// per-scope, never aborts the driver).
type FetchResponse struct {
	Objects []wire.RawObject
	Plan    string
	Error   string
}

// Provider is the interface the driver (package driver) depends on. Concrete
// adapters (package provider/httpprovider, provider/memprovider) implement
// it over an HTTP endpoint or an in-memory fixture respectively.
type Provider interface {
	// Hello returns the provider's capability announcement.
	Hello(ctx context.Context) (Capability, error)
	// AllData returns every object the provider holds; only called when
	// Hello reported ModeAllAtOnce.
	AllData(ctx context.Context) ([]wire.RawObject, error)
	// FetchLazy runs one conditioned slice fetch; only called when Hello
	// reported ModeLazy.
	FetchLazy(ctx context.Context, req FetchRequest) (FetchResponse, error)
}
