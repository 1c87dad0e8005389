package llm

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```":          `{"a":1}`,
		"```\n{\"a\":1}\n```":              `{"a":1}`,
		"Here you go: {\"a\":{\"b\":2}} :)": `{"a":{"b":2}}`,
		`{"a":1}`:                          `{"a":1}`,
		"no braces":                        "no braces",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanJSON(in), in)
	}
}

func TestCleanJSON_IgnoresTrailingProse(t *testing.T) {
	got := CleanJSON("Sure! {\"vendor\":\"Target\"} Let me know if {you} need more {:}")
	assert.Equal(t, `{"vendor":"Target"}`, got)

	got = CleanJSON("Two objects: {\"a\":1} and {\"b\":2}")
	assert.Equal(t, `{"a":1}`, got)
}

func TestSanitizeFields(t *testing.T) {
	raw := []byte(`{
		"merchant_name": "Blue Bottle",
		"total": 6.5,
		"tx_date": "2025-06-03T10:00:00Z",
		"payment_method": "VISA",
		"payment_last4": "ending 4242",
		"category": "  ",
		"description": "coffee"
	}`)

	out, adjusted, err := SanitizeFields(raw, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, adjusted)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))

	assert.Equal(t, map[string]any{
		"vendor":          "Blue Bottle",
		"total_amount":    "6.50",
		"order_date":      "2025-06-03",
		"form_of_payment": "Card",
		"card_type":       nil,
		"card_last4":      "4242",
		"category":        nil,
		"tracking_number": nil,
	}, m)
	assert.NoError(t, ValidateJSON(fieldsSchema(t), out))
}

func TestSanitizeFields_KeepsCanonicalKeyOverSynonym(t *testing.T) {
	out, _, err := SanitizeFields([]byte(`{"vendor":"Acme","merchant":"Other Co"}`), nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "Acme", m["vendor"])
}

func TestSanitizeFields_RejectsNonObject(t *testing.T) {
	_, _, err := SanitizeFields([]byte(`null`), nil)
	assert.Error(t, err)

	_, _, err = SanitizeFields([]byte(`"text"`), nil)
	assert.Error(t, err)
}

func TestSchema_RejectsExtraKeys(t *testing.T) {
	doc := []byte(`{"vendor":null,"total_amount":null,"order_date":null,"form_of_payment":null,
		"card_type":null,"card_last4":null,"category":null,"tracking_number":null,"extra":1}`)
	assert.Error(t, ValidateJSON(fieldsSchema(t), doc))
}

func fieldsSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	schema, err := CompileSchema(BuildFieldsJSONSchema())
	require.NoError(t, err)
	return schema
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 10))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 0))
}
