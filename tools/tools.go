// Package tools defines the whitelisted, read-only data accessors the model
// may invoke, their JSON schemas, and the dispatch path that turns failures
// into error payloads instead of crashing the chat turn.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/retana1885/Canave.ia/db"
)

// ToolDefinition describes one accessor: its manifest entry plus the handler.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Function    func(ctx context.Context, input json.RawMessage) (any, error)
}

// GenerateSchema derives the JSON schema for a tool input struct.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(&v)

	raw, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}

	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		panic(err)
	}
	return params
}

// Registry holds the fixed tool whitelist. There is no registration API: the
// two accessors are the entire surface.
type Registry struct {
	source *db.Source
	defs   []ToolDefinition
}

func NewRegistry(source *db.Source) *Registry {
	r := &Registry{source: source}
	r.defs = []ToolDefinition{
		{
			Name:        "ventas_ayer",
			Description: "Obtiene ventas de ayer para una sucursal (solo lectura).",
			Parameters:  GenerateSchema[VentasAyerInput](),
			Function:    r.ventasAyer,
		},
		{
			Name:        "top_productos_mes",
			Description: "Obtiene Top N productos del mes (todas las sucursales o una sucursal).",
			Parameters:  GenerateSchema[TopProductosMesInput](),
			Function:    r.topProductosMes,
		},
	}
	return r
}

// Definitions returns the manifest entries in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	return r.defs
}

// Dispatch runs the named tool and returns its JSON result. Unknown names and
// handler errors are serialized as error payloads; Dispatch never fails.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) string {
	var def *ToolDefinition
	for i := range r.defs {
		if r.defs[i].Name == name {
			def = &r.defs[i]
			break
		}
	}
	if def == nil {
		return errorPayload(fmt.Sprintf("Tool no permitida: %s", name))
	}

	result, err := def.Function(ctx, args)
	if err != nil {
		return errorPayload(err.Error())
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return errorPayload(fmt.Sprintf("serializar resultado: %v", err))
	}
	return string(encoded)
}

func errorPayload(message string) string {
	encoded, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return `{"error":"internal"}`
	}
	return string(encoded)
}
