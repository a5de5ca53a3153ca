package entities

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/routesales/internal/jsonx"
	"github.com/dmitrijs2005/routesales/internal/repo"
)

// Route is a delivery route. Download-only reference data.
type Route struct {
	RouteID     int64
	Code        string
	Name        string
	Flag        int
	DeviceToken string
	CreatedAt   string
	UpdatedAt   string
}

func (r Route) RecordID() int64         { return r.RouteID }
func (r Route) RecordUpdatedAt() string { return r.UpdatedAt }

type routeWire struct {
	ID        *jsonx.Int64  `json:"id"`
	Code      *jsonx.String `json:"code"`
	Name      *jsonx.String `json:"name"`
	Flag      *jsonx.Int    `json:"flag"`
	CreatedAt *jsonx.String `json:"created_at"`
	UpdatedAt *jsonx.String `json:"updated_at"`
}

type routeCodec struct{}

func (routeCodec) Values(r Route) []any {
	return []any{r.RouteID, r.Code, r.Name, r.Flag, r.DeviceToken, r.CreatedAt, r.UpdatedAt}
}

func (routeCodec) ScanRow(sc repo.RowScanner) (Route, error) {
	var r Route
	err := sc.Scan(&r.RouteID, &r.Code, &r.Name, &r.Flag, &r.DeviceToken, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (routeCodec) Apply(base Route, raw json.RawMessage) (Route, error) {
	var w routeWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return base, fmt.Errorf("decode route: %w", err)
	}
	out := base
	out.RouteID = int64Or(w.ID, base.RouteID)
	out.Code = strOr(w.Code, base.Code)
	out.Name = strOr(w.Name, base.Name)
	out.Flag = intOr(w.Flag, base.Flag)
	out.CreatedAt = strOr(w.CreatedAt, base.CreatedAt)
	out.UpdatedAt = strOr(w.UpdatedAt, base.UpdatedAt)
	return out, nil
}

func (c routeCodec) Decode(raw json.RawMessage) (Route, error) {
	return c.Apply(Route{Flag: 1}, raw)
}

func (routeCodec) Encode(r Route) map[string]any {
	return map[string]any{
		"id":         r.RouteID,
		"code":       r.Code,
		"name":       r.Name,
		"flag":       r.Flag,
		"created_at": r.CreatedAt,
		"updated_at": r.UpdatedAt,
	}
}

// Routes is the repository descriptor for the routes table.
var Routes = repo.Descriptor[Route]{
	Name:       "routes",
	Table:      "routes",
	Alias:      "r",
	IDColumn:   "route_id",
	CodeColumn: "code",
	NameColumn: "name",
	Columns: []string{"route_id", "code", "name",
		"flag", "device_token", "created_date_time", "updated_date_time"},
	Preserved:     preservedColumns,
	SearchColumns: []string{"r.code", "r.name"},
	SelectBase: `SELECT r.route_id, r.code, r.name,
		r.flag, r.device_token, r.created_date_time, r.updated_date_time
	FROM routes r`,
	Endpoints: repo.Endpoints{
		Download: "routes/download",
	},
	Codec: routeCodec{},
}
