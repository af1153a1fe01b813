package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

type VentasAyerInput struct {
	Sucursal string `json:"sucursal" jsonschema_description:"Nombre de la sucursal a consultar."`
}

// Placeholder hasta conectar la vista BI agregada por día/sucursal.
const ventasAyerQuery = `
	SELECT
		CAST(now() - interval '1 day' AS date) AS fecha,
		$1::text AS sucursal,
		0.0 AS venta_neta,
		0 AS tickets
`

func (r *Registry) ventasAyer(ctx context.Context, input json.RawMessage) (any, error) {
	var in VentasAyerInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Sucursal) == "" {
		return nil, errors.New("sucursal es requerida")
	}

	return r.source.RunQuery(ctx, ventasAyerQuery, in.Sucursal)
}
