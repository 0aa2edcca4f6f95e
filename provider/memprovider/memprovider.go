// Package memprovider implements provider.Provider entirely in memory, for
// tests. It is grounded on flask_providers/simple_mock_provider.py and
// mock_provider.py: a fixed set of objects served under a single capability,
// either ALL_AT_ONCE (the whole set every time) or LAZY (filtered by the
// requested type and id_types; requested fields and conditions are not
// applied, so matching objects are returned whole).
package memprovider

import (
	"context"
	"strconv"

	"github.com/sebitommy123/sa/provider"
	"github.com/sebitommy123/sa/value"
	"github.com/sebitommy123/sa/wire"
)

// Provider serves a fixed, in-memory object set.
type Provider struct {
	name    string
	mode    provider.Mode
	scopes  []provider.LazyScope
	objects []wire.RawObject
}

// New builds an ALL_AT_ONCE in-memory provider serving objects unconditionally.
func New(name string, objects []wire.RawObject) *Provider {
	return &Provider{name: name, mode: provider.ModeAllAtOnce, objects: objects}
}

// NewLazy builds a LAZY in-memory provider advertising scopes and serving
// FetchLazy requests by filtering objects against type and id_types only.
func NewLazy(name string, scopes []provider.LazyScope, objects []wire.RawObject) *Provider {
	return &Provider{name: name, mode: provider.ModeLazy, scopes: scopes, objects: objects}
}

var _ provider.Provider = (*Provider)(nil)

func (p *Provider) Hello(ctx context.Context) (provider.Capability, error) {
	return provider.Capability{Name: p.name, Mode: p.mode, LazyLoadingScopes: p.scopes}, nil
}

func (p *Provider) AllData(ctx context.Context) ([]wire.RawObject, error) {
	return p.objects, nil
}

func (p *Provider) FetchLazy(ctx context.Context, req provider.FetchRequest) (provider.FetchResponse, error) {
	var matched []wire.RawObject
	for _, obj := range p.objects {
		if !hasType(obj, req.Type) {
			continue
		}
		if !satisfiesIDTypes(obj, req.IDTypes) {
			continue
		}
		if !satisfiesConditions(obj, req.Conditions) {
			continue
		}
		matched = append(matched, obj)
	}
	if req.PlanOnly {
		return provider.FetchResponse{Plan: "would fetch " + strconv.Itoa(len(matched)) + " " + req.Type + " object(s)"}, nil
	}
	return provider.FetchResponse{Objects: matched}, nil
}

func hasType(obj wire.RawObject, t string) bool {
	if t == "" {
		return true
	}
	for _, ty := range obj.Types {
		if ty == t {
			return true
		}
	}
	return false
}

// satisfiesIDTypes implements the id_types narrowing a scope with
// NeedsIDTypes=true applies (spec.md §6.1, §8 scenario 6): when the driver
// passes a non-empty id_types list, obj matches only if its own (id, type)
// appears in it.
func satisfiesIDTypes(obj wire.RawObject, idTypes []value.IDType) bool {
	if len(idTypes) == 0 {
		return true
	}
	for _, want := range idTypes {
		for _, t := range obj.Types {
			if obj.ID == want.ID && t == want.Type {
				return true
			}
		}
	}
	return false
}

func satisfiesConditions(obj wire.RawObject, conds []provider.FetchCondition) bool {
	// Condition matching against raw wire properties (pre-normalization)
	// is out of scope for this fixture: LAZY in-memory providers used by
	// tests ignore conditions rather than filtering by them, matching how
	// mock_provider.py's ALL_AT_ONCE
	// fixtures never filter either.
	return true
}
