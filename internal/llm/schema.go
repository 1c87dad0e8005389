package llm

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

// BuildFieldsJSONSchema returns the JSON-Schema the model reply must satisfy
// after sanitizing: every field present, each a string of the right shape or
// null, nothing else.
func BuildFieldsJSONSchema() map[string]any {
	networks := []any{
		string(constants.Visa), string(constants.MasterCard), string(constants.AMEX),
		string(constants.Discover), string(constants.Diners), string(constants.JCB),
		string(constants.UnionPay), nil,
	}
	props := map[string]any{
		entity.FieldVendor:         nullableString(map[string]any{"minLength": 1}),
		entity.FieldTotalAmount:    nullableString(map[string]any{"pattern": `^-?\d+\.\d{2}$`}),
		entity.FieldOrderDate:      nullableString(map[string]any{"pattern": `^\d{4}-\d{2}-\d{2}$`}),
		entity.FieldFormOfPayment:  map[string]any{"enum": []any{string(constants.PaymentCard), string(constants.PaymentCash), nil}},
		entity.FieldCardType:       map[string]any{"enum": networks},
		entity.FieldCardLast4:      nullableString(map[string]any{"pattern": `^\d{4}$`}),
		entity.FieldCategory:       nullableString(map[string]any{"minLength": 1}),
		entity.FieldTrackingNumber: nullableString(map[string]any{"minLength": 1}),
	}
	required := make([]string, len(entity.ExtractedFields))
	copy(required, entity.ExtractedFields)

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func nullableString(extra map[string]any) map[string]any {
	p := map[string]any{"type": []any{"string", "null"}}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

// CompileSchema compiles schemaMap once for repeated validation.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, eris.Wrap(err, "marshal schema")
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, eris.Wrap(err, "add schema")
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, eris.Wrap(err, "compile schema")
	}
	return schema, nil
}

// ValidateJSON checks data against a compiled schema.
func ValidateJSON(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return eris.Wrap(err, "unmarshal data")
	}
	if err := schema.Validate(v); err != nil {
		return eris.Wrap(err, "json does not match schema")
	}
	return nil
}
