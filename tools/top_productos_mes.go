package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

type TopProductosMesInput struct {
	Anio     int     `json:"anio" jsonschema_description:"Año a consultar, por ejemplo 2026."`
	Mes      int     `json:"mes" jsonschema_description:"Mes a consultar (1-12)."`
	TopN     int     `json:"top_n" jsonschema_description:"Cantidad máxima de productos a devolver."`
	Sucursal *string `json:"sucursal,omitempty" jsonschema_description:"Sucursal específica; omitir para todas."`
}

type productoRow struct {
	Anio       int     `json:"Anio"`
	Mes        int     `json:"Mes"`
	Sucursal   string  `json:"Sucursal"`
	ArticuloID string  `json:"ArticuloId"`
	Articulo   string  `json:"Articulo"`
	Unidades   int     `json:"Unidades"`
	VentaNeta  float64 `json:"VentaNeta"`
}

// topProductosMes builds its placeholder frame locally; no hay datos reales
// todavía. The result is always capped at top_n rows.
func (r *Registry) topProductosMes(ctx context.Context, input json.RawMessage) (any, error) {
	var in TopProductosMesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}

	if in.Mes < 1 || in.Mes > 12 {
		return nil, errors.New("mes debe estar entre 1 y 12")
	}

	sucursal := "TODAS"
	if in.Sucursal != nil && strings.TrimSpace(*in.Sucursal) != "" {
		sucursal = strings.TrimSpace(*in.Sucursal)
	}

	rows := []productoRow{
		{
			Anio:      in.Anio,
			Mes:       in.Mes,
			Sucursal:  sucursal,
			Articulo:  "Pendiente de conectar a datos reales",
			Unidades:  0,
			VentaNeta: 0.0,
		},
	}

	limit := in.TopN
	if limit < 0 {
		limit = 0
	}
	if limit < len(rows) {
		rows = rows[:limit]
	}

	return rows, nil
}
