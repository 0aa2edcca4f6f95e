package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// customValueSchemas holds one compiled JSON Schema per CustomValue tag
// (§6.2). A provider payload is checked against its tag's schema before
// package value promotes it to a typed CustomValue, so a malformed wire
// payload fails with a structured error at ingestion time rather than a
// type assertion panic deep in resolve logic.
var customValueSchemas = map[string]string{
	"timestamp": `{
		"type": "object",
		"required": ["timestamp"],
		"properties": {"timestamp": {"type": "integer"}}
	}`,
	"link": `{
		"type": "object",
		"required": ["query", "show_text"],
		"properties": {"query": {"type": "string"}, "show_text": {"type": "string"}}
	}`,
	"ref": `{
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string"},
			"type": {"type": "string"},
			"source": {"type": "string"},
			"show_text": {"type": "string"}
		}
	}`,
	"query": `{
		"type": "object",
		"required": ["query"],
		"properties": {"query": {"type": "string"}}
	}`,
	"email": `{
		"type": "object",
		"required": ["email"],
		"properties": {"email": {"type": "string"}}
	}`,
	"url": `{
		"type": "object",
		"required": ["url"],
		"properties": {"url": {"type": "string"}}
	}`,
	"phone": `{
		"type": "object",
		"required": ["phone"],
		"properties": {"phone": {"type": "string"}}
	}`,
	"date_range": `{
		"type": "object",
		"required": ["start", "end"],
		"properties": {"start": {"type": "integer"}, "end": {"type": "integer"}}
	}`,
	"money": `{
		"type": "object",
		"required": ["amount", "currency"],
		"properties": {"amount": {"type": "number"}, "currency": {"type": "string"}}
	}`,
	"image": `{
		"type": "object",
		"required": ["url"],
		"properties": {"url": {"type": "string"}, "alt": {"type": "string"}}
	}`,
	"tag_list": `{
		"type": "object",
		"required": ["tags"],
		"properties": {"tags": {"type": "array", "items": {"type": "string"}}}
	}`,
	"template": `{
		"type": "object",
		"required": ["template", "values"],
		"properties": {"template": {"type": "string"}, "values": {"type": "object"}}
	}`,
	"join": `{
		"type": "object",
		"required": ["items", "sep"],
		"properties": {"items": {"type": "array"}, "sep": {"type": "string"}}
	}`,
	"first_non_null": `{
		"type": "object",
		"required": ["items"],
		"properties": {"items": {"type": "array"}}
	}`,
}

var compiledSchemas map[string]*jsonschema.Schema

func init() {
	compiledSchemas = make(map[string]*jsonschema.Schema, len(customValueSchemas))
	for tag, raw := range customValueSchemas {
		c := jsonschema.NewCompiler()
		url := "sa:///customvalue/" + tag + ".json"
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			panic(fmt.Sprintf("wire: invalid embedded schema for %q: %v", tag, err))
		}
		if err := c.AddResource(url, doc); err != nil {
			panic(fmt.Sprintf("wire: adding schema resource for %q: %v", tag, err))
		}
		schema, err := c.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("wire: compiling schema for %q: %v", tag, err))
		}
		compiledSchemas[tag] = schema
	}
}

// ValidateCustomValue checks a CustomValue payload (the full JSON object,
// including __sa_type__) against the tag's schema. Returns an error naming
// the tag and the validation failure when the payload doesn't conform.
func ValidateCustomValue(tag string, payload map[string]json.RawMessage) error {
	schema, ok := compiledSchemas[tag]
	if !ok {
		return fmt.Errorf("unknown custom value tag %q", tag)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("re-marshaling %q payload: %w", tag, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("decoding %q payload for validation: %w", tag, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%s payload failed schema validation: %w", tag, err)
	}
	return nil
}

// KnownCustomValueTags lists every CustomValue tag with a registered schema.
func KnownCustomValueTags() []string {
	tags := make([]string, 0, len(customValueSchemas))
	for tag := range customValueSchemas {
		tags = append(tags, tag)
	}
	return tags
}
