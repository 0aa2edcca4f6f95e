// Package mongoprovider adapts provider.Provider onto a MongoDB collection
// of raw object documents, using the driver's filter API to push
// FetchLazy's type and id_types restriction down to the database instead of
// fetching everything and filtering in Go.
//
// Grounded on features/runlog/mongo/clients/mongo/client.go's client shape
// (an Options struct carrying an already-constructed *mongo.Client plus
// database/collection/timeout, a constructor that derives a *mongo.
// Collection and validates required fields, context-scoped per-call
// timeouts) — ported from the teacher's mongo-driver v1 import paths to
// go.mongodb.org/mongo-driver/v2, since that is the version this module
// depends on (see DESIGN.md).
package mongoprovider

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sebitommy123/sa/provider"
	"github.com/sebitommy123/sa/wire"
)

const (
	defaultCollection = "sa_objects"
	defaultTimeout    = 10 * time.Second
)

type (
	// Options configures a Provider.
	Options struct {
		Client     *mongo.Client
		Database   string
		Collection string
		Timeout    time.Duration

		// Name and Scopes describe this provider's Hello response. Mode is
		// always ModeLazy: FetchLazy is implemented via Mongo filters.
		Name   string
		Scopes []provider.LazyScope
	}

	// Provider serves objects out of one MongoDB collection.
	Provider struct {
		coll    *mongo.Collection
		timeout time.Duration
		name    string
		scopes  []provider.LazyScope
	}

	document struct {
		ID      string   `bson:"_id"`
		Types   []string `bson:"types"`
		Source  string   `bson:"source"`
		Payload []byte   `bson:"payload"`
	}
)

// New validates opts and returns a ready Provider.
func New(opts Options) (*Provider, error) {
	if opts.Client == nil {
		return nil, errors.New("mongoprovider: mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("mongoprovider: database name is required")
	}
	collection := opts.Collection
	if collection == "" {
		collection = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Provider{
		coll:    opts.Client.Database(opts.Database).Collection(collection),
		timeout: timeout,
		name:    opts.Name,
		scopes:  opts.Scopes,
	}, nil
}

var _ provider.Provider = (*Provider)(nil)

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

// Hello returns the provider's static capability announcement.
func (p *Provider) Hello(ctx context.Context) (provider.Capability, error) {
	return provider.Capability{Name: p.name, Mode: provider.ModeLazy, LazyLoadingScopes: p.scopes}, nil
}

// AllData returns every document in the collection, decoded back into wire
// objects. Present for providers configured to also answer a bulk dump;
// most mongoprovider deployments are LAZY-only and never call this.
func (p *Provider) AllData(ctx context.Context) ([]wire.RawObject, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	cur, err := p.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeCursor(ctx, cur)
}

// FetchLazy runs one conditioned query against the collection (spec.md
// §6.1): type and id_types narrow the Mongo filter directly; field
// narrowing and literal conditions are applied by the caller's downstream
// operators rather than pushed into the query, since the stored payload is
// opaque JSON rather than a field-indexed document.
func (p *Provider) FetchLazy(ctx context.Context, req provider.FetchRequest) (provider.FetchResponse, error) {
	filter := bson.D{}
	if req.Type != "" {
		filter = append(filter, bson.E{Key: "types", Value: req.Type})
	}
	if len(req.IDTypes) > 0 {
		ids := make([]string, 0, len(req.IDTypes))
		for _, it := range req.IDTypes {
			if req.Type == "" || it.Type == req.Type {
				ids = append(ids, it.ID)
			}
		}
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}})
	}

	if req.PlanOnly {
		ctx, cancel := p.withTimeout(ctx)
		defer cancel()
		count, err := p.coll.CountDocuments(ctx, filter)
		if err != nil {
			return provider.FetchResponse{}, err
		}
		return provider.FetchResponse{Plan: planDescription(req, count)}, nil
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	cur, err := p.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return provider.FetchResponse{}, err
	}
	defer cur.Close(ctx)
	objects, err := decodeCursor(ctx, cur)
	if err != nil {
		return provider.FetchResponse{}, err
	}
	return provider.FetchResponse{Objects: objects}, nil
}

// Upsert writes obj to the collection, keyed by its id. Exposed for test
// fixtures and ingestion tooling; not part of provider.Provider.
func (p *Provider) Upsert(ctx context.Context, obj wire.RawObject) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	payload, err := obj.Encode()
	if err != nil {
		return err
	}
	doc := document{ID: obj.ID, Types: obj.Types, Source: obj.Source, Payload: payload}
	_, err = p.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: obj.ID}},
		bson.D{{Key: "$set", Value: doc}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func decodeCursor(ctx context.Context, cur *mongo.Cursor) ([]wire.RawObject, error) {
	var objects []wire.RawObject
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		obj, err := wire.DecodeRawObject(doc.Payload)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return objects, nil
}

func planDescription(req provider.FetchRequest, count int64) string {
	if req.Type == "" {
		return "would fetch all matching objects"
	}
	return "would fetch " + strconv.FormatInt(count, 10) + " " + req.Type + " document(s) from mongo"
}
