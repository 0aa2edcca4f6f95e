// Package httpprovider implements provider.Provider over the three HTTP
// endpoints of spec.md §6.1 (hello, all_data, lazy_load), grounded on
// original_source/sa/shell/provider_manager.py's ProviderConnection (hello/
// all_data GETs) for the overall client shape, and on
// runtime/a2a/httpclient.Client for the idiomatic Go structure (Option
// functions, an injectable *http.Client, New returning *Client).
package httpprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sebitommy123/sa/provider"
	"github.com/sebitommy123/sa/value"
	"github.com/sebitommy123/sa/wire"
)

type (
	// Option configures a Client.
	Option func(*Client)

	// Client implements provider.Provider over JSON HTTP, following the
	// /hello, /all_data, /lazy_load contract (spec.md §6.1).
	Client struct {
		baseURL string
		http    *http.Client
		headers http.Header
	}

	helloResponse struct {
		Name              string            `json:"name"`
		Mode              string            `json:"mode"`
		LazyLoadingScopes []lazyScopeWire   `json:"lazy_loading_scopes"`
	}

	lazyScopeWire struct {
		Type            string      `json:"type"`
		Fields          fieldsWire  `json:"fields"`
		FilteringFields []string    `json:"filtering_fields"`
		NeedsIDTypes    bool        `json:"needs_id_types"`
	}

	// fieldsWire decodes either the literal string "*" or a JSON array of
	// field names, matching the union type in spec.md §6.1.
	fieldsWire struct {
		Star   bool
		Fields []string
	}

	lazyLoadRequest struct {
		Scope      lazyLoadScopeWire `json:"scope"`
		Conditions [][3]any          `json:"conditions"`
		PlanOnly   bool              `json:"plan_only"`
		IDTypes    [][2]string       `json:"id_types"`
	}

	lazyLoadScopeWire struct {
		Type   string     `json:"type"`
		Fields fieldsWire `json:"fields"`
	}

	lazyLoadResponse struct {
		SAObjects []json.RawMessage `json:"sa_objects"`
		Plan      json.RawMessage   `json:"plan"`
		Error     *string           `json:"error"`
	}
)

func (f *fieldsWire) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "*" {
			return fmt.Errorf("fields string must be \"*\", got %q", s)
		}
		f.Star = true
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("fields must be \"*\" or an array of strings: %w", err)
	}
	f.Fields = list
	return nil
}

func (f fieldsWire) MarshalJSON() ([]byte, error) {
	if f.Star {
		return json.Marshal("*")
	}
	if f.Fields == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(f.Fields)
}

// WithHTTPClient overrides the underlying *http.Client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithHeader adds a static header sent on every request.
func WithHeader(name, value string) Option {
	return func(cl *Client) {
		if cl.headers == nil {
			cl.headers = make(http.Header)
		}
		cl.headers.Add(name, value)
	}
}

// New constructs a Client talking to baseURL (e.g. "http://localhost:5042"),
// trimming any trailing slash the way ProviderConnection.load did.
func New(baseURL string, opts ...Option) *Client {
	cl := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		headers: make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cl)
		}
	}
	return cl
}

var _ provider.Provider = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header = c.headers.Clone()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s%s: %w", c.baseURL, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s%s response: %w", c.baseURL, path, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s%s returned status %d: %s", c.baseURL, path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s%s response: %w", c.baseURL, path, err)
	}
	return nil
}

// Hello calls GET /hello (spec.md §6.1).
func (c *Client) Hello(ctx context.Context) (provider.Capability, error) {
	var resp helloResponse
	if err := c.do(ctx, http.MethodGet, "/hello", nil, &resp); err != nil {
		return provider.Capability{}, err
	}
	scopes := make([]provider.LazyScope, len(resp.LazyLoadingScopes))
	for i, s := range resp.LazyLoadingScopes {
		scopes[i] = provider.LazyScope{
			Type:            s.Type,
			FieldsStar:      s.Fields.Star,
			Fields:          s.Fields.Fields,
			FilteringFields: s.FilteringFields,
			NeedsIDTypes:    s.NeedsIDTypes,
		}
	}
	return provider.Capability{
		Name:              resp.Name,
		Mode:              provider.Mode(resp.Mode),
		LazyLoadingScopes: scopes,
	}, nil
}

// AllData calls GET /all_data (spec.md §6.1).
func (c *Client) AllData(ctx context.Context) ([]wire.RawObject, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/all_data", nil, &raw); err != nil {
		return nil, err
	}
	return decodeRawObjects(raw)
}

// FetchLazy calls POST /lazy_load with the scope/conditions/id_types demand
// (spec.md §6.1).
func (c *Client) FetchLazy(ctx context.Context, req provider.FetchRequest) (provider.FetchResponse, error) {
	wireReq := lazyLoadRequest{
		Scope: lazyLoadScopeWire{
			Type:   req.Type,
			Fields: fieldsWire{Star: req.FieldsStar, Fields: req.Fields},
		},
		PlanOnly: req.PlanOnly,
	}
	for _, cond := range req.Conditions {
		wireReq.Conditions = append(wireReq.Conditions, [3]any{cond.Field, cond.Op, valueToJSON(cond.Value)})
	}
	for _, id := range req.IDTypes {
		wireReq.IDTypes = append(wireReq.IDTypes, [2]string{id.ID, id.Type})
	}

	var resp lazyLoadResponse
	if err := c.do(ctx, http.MethodPost, "/lazy_load", wireReq, &resp); err != nil {
		return provider.FetchResponse{}, err
	}
	objects, err := decodeRawObjects(resp.SAObjects)
	if err != nil {
		return provider.FetchResponse{}, err
	}
	out := provider.FetchResponse{Objects: objects}
	if len(resp.Plan) > 0 {
		out.Plan = string(resp.Plan)
	}
	if resp.Error != nil {
		out.Error = *resp.Error
	}
	return out, nil
}

func decodeRawObjects(raw []json.RawMessage) ([]wire.RawObject, error) {
	out := make([]wire.RawObject, len(raw))
	for i, r := range raw {
		obj, err := wire.DecodeRawObject(r)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		out[i] = obj
	}
	return out, nil
}

// valueToJSON converts a value.Value back into a plain JSON-able Go value
// for outbound condition literals. Conditions only ever hold scalars
// extracted by operator.Filter's heuristic (operator/list.go), so the
// composite kinds are unreachable in practice and panic rather than
// silently mis-serializing.
func valueToJSON(v value.Value) any {
	switch t := v.(type) {
	case value.Null, value.AbsorbingNull:
		return nil
	case value.Bool:
		return bool(t)
	case value.Int:
		return int64(t)
	case value.Float:
		return float64(t)
	case value.String:
		return string(t)
	default:
		panic(fmt.Sprintf("httpprovider: condition literal of unsupported kind %T", v))
	}
}
