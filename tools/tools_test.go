package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/retana1885/Canave.ia/config"
	"github.com/retana1885/Canave.ia/db"
)

func newTestRegistry() *Registry {
	// No SQL credentials: tools that touch the database fail at acquisition.
	return NewRegistry(db.NewSource(config.SQLConfig{}))
}

func TestRegistryDefinitions(t *testing.T) {
	defs := newTestRegistry().Definitions()

	want := []string{"ventas_ayer", "top_productos_mes"}
	if len(defs) != len(want) {
		t.Fatalf("unexpected number of tools: got %d want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("tool %d: got %q want %q", i, defs[i].Name, name)
		}
		if defs[i].Parameters["type"] != "object" {
			t.Errorf("tool %q: schema is not an object: %v", name, defs[i].Parameters["type"])
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	payload := newTestRegistry().Dispatch(context.Background(), "borrar_todo", json.RawMessage(`{}`))

	var decoded map[string]string
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["error"] != "Tool no permitida: borrar_todo" {
		t.Fatalf("unexpected error payload: %q", decoded["error"])
	}
}

func TestDispatchToolErrorBecomesPayload(t *testing.T) {
	// ventas_ayer needs the database; without credentials the dispatch must
	// still produce an error payload instead of failing.
	payload := newTestRegistry().Dispatch(context.Background(), "ventas_ayer", json.RawMessage(`{"sucursal":"Tamazula 1"}`))

	var decoded map[string]string
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["error"] == "" {
		t.Fatalf("expected error payload, got %q", payload)
	}
}

func TestTopProductosMesCapsRows(t *testing.T) {
	reg := newTestRegistry()

	cases := []struct {
		name string
		args string
		want int
	}{
		{"top_n larger than frame", `{"anio":2026,"mes":1,"top_n":10}`, 1},
		{"top_n one", `{"anio":2026,"mes":1,"top_n":1}`, 1},
		{"top_n zero", `{"anio":2026,"mes":1,"top_n":0}`, 0},
		{"top_n negative", `{"anio":2026,"mes":1,"top_n":-3}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := reg.Dispatch(context.Background(), "top_productos_mes", json.RawMessage(tc.args))

			var rows []map[string]any
			if err := json.Unmarshal([]byte(payload), &rows); err != nil {
				t.Fatalf("payload is not a row list: %v (%s)", err, payload)
			}
			if len(rows) != tc.want {
				t.Fatalf("expected %d rows, got %d", tc.want, len(rows))
			}
		})
	}
}

func TestTopProductosMesDefaultsSucursal(t *testing.T) {
	reg := newTestRegistry()

	payload := reg.Dispatch(context.Background(), "top_productos_mes", json.RawMessage(`{"anio":2026,"mes":1,"top_n":5}`))

	var rows []map[string]any
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if rows[0]["Sucursal"] != "TODAS" {
		t.Fatalf("expected Sucursal TODAS, got %v", rows[0]["Sucursal"])
	}
	if rows[0]["Anio"] != float64(2026) || rows[0]["Mes"] != float64(1) {
		t.Fatalf("unexpected placeholder row: %v", rows[0])
	}
}

func TestTopProductosMesRejectsBadMonth(t *testing.T) {
	reg := newTestRegistry()

	payload := reg.Dispatch(context.Background(), "top_productos_mes", json.RawMessage(`{"anio":2026,"mes":13,"top_n":5}`))

	var decoded map[string]string
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["error"] == "" {
		t.Fatalf("expected error payload for month 13, got %q", payload)
	}
}

func TestVentasAyerRequiresSucursal(t *testing.T) {
	reg := newTestRegistry()

	payload := reg.Dispatch(context.Background(), "ventas_ayer", json.RawMessage(`{"sucursal":"  "}`))

	var decoded map[string]string
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["error"] != "sucursal es requerida" {
		t.Fatalf("unexpected error payload: %q", decoded["error"])
	}
}

func TestGenerateSchemaMarksRequiredFields(t *testing.T) {
	schema := GenerateSchema[TopProductosMesInput]()

	required, ok := schema["required"].([]any)
	if !ok {
		t.Fatalf("schema has no required list: %v", schema)
	}

	got := make(map[string]bool, len(required))
	for _, field := range required {
		got[field.(string)] = true
	}
	for _, field := range []string{"anio", "mes", "top_n"} {
		if !got[field] {
			t.Errorf("field %q should be required", field)
		}
	}
	if got["sucursal"] {
		t.Errorf("sucursal must stay optional")
	}
}
