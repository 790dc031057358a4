package app

import (
	"reflect"

	"parts-inventory/internal/core"
	"parts-inventory/internal/storage"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// CollectionSchemas returns the JSON Schema of each persisted collection, keyed
// by collection name. Each collection is stored as a JSON array of records.
func CollectionSchemas() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		storage.CollectionParts:          arrayOf(reflectSchema(core.Part{})),
		storage.CollectionPurchaseOrders: arrayOf(reflectSchema(core.PurchaseOrder{})),
	}
}

func reflectSchema(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(decimal.Decimal{}) {
				return &jsonschema.Schema{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`}
			}
			return nil
		},
	}
	return reflector.Reflect(v)
}

func arrayOf(item *jsonschema.Schema) *jsonschema.Schema {
	version := item.Version
	item.Version = ""
	return &jsonschema.Schema{Version: version, Type: "array", Items: item}
}
