package entities

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/routesales/internal/jsonx"
	"github.com/dmitrijs2005/routesales/internal/repo"
)

// Salesman is a field salesman assigned to a route. Download-only reference
// data; RouteName is join-resolved at read time.
type Salesman struct {
	SalesmanID  int64
	Code        string
	Name        string
	Phone       string
	RouteID     int64
	Flag        int
	DeviceToken string
	CreatedAt   string
	UpdatedAt   string

	RouteName string
}

func (s Salesman) RecordID() int64         { return s.SalesmanID }
func (s Salesman) RecordUpdatedAt() string { return s.UpdatedAt }

type salesmanWire struct {
	ID        *jsonx.Int64  `json:"id"`
	Code      *jsonx.String `json:"code"`
	Name      *jsonx.String `json:"name"`
	Phone     *jsonx.String `json:"phone"`
	RouteID   *jsonx.Int64  `json:"route_id"`
	Flag      *jsonx.Int    `json:"flag"`
	CreatedAt *jsonx.String `json:"created_at"`
	UpdatedAt *jsonx.String `json:"updated_at"`
}

type salesmanCodec struct{}

func (salesmanCodec) Values(s Salesman) []any {
	return []any{s.SalesmanID, s.Code, s.Name, s.Phone, s.RouteID,
		s.Flag, s.DeviceToken, s.CreatedAt, s.UpdatedAt}
}

func (salesmanCodec) ScanRow(sc repo.RowScanner) (Salesman, error) {
	var s Salesman
	err := sc.Scan(&s.SalesmanID, &s.Code, &s.Name, &s.Phone, &s.RouteID,
		&s.Flag, &s.DeviceToken, &s.CreatedAt, &s.UpdatedAt, &s.RouteName)
	return s, err
}

func (salesmanCodec) Apply(base Salesman, raw json.RawMessage) (Salesman, error) {
	var w salesmanWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return base, fmt.Errorf("decode salesman: %w", err)
	}
	out := base
	out.SalesmanID = int64Or(w.ID, base.SalesmanID)
	out.Code = strOr(w.Code, base.Code)
	out.Name = strOr(w.Name, base.Name)
	out.Phone = strOr(w.Phone, base.Phone)
	out.RouteID = int64Or(w.RouteID, base.RouteID)
	out.Flag = intOr(w.Flag, base.Flag)
	out.CreatedAt = strOr(w.CreatedAt, base.CreatedAt)
	out.UpdatedAt = strOr(w.UpdatedAt, base.UpdatedAt)
	return out, nil
}

func (c salesmanCodec) Decode(raw json.RawMessage) (Salesman, error) {
	return c.Apply(Salesman{Flag: 1}, raw)
}

func (salesmanCodec) Encode(s Salesman) map[string]any {
	return map[string]any{
		"id":         s.SalesmanID,
		"code":       s.Code,
		"name":       s.Name,
		"phone":      s.Phone,
		"route_id":   s.RouteID,
		"flag":       s.Flag,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}

// Salesmen is the repository descriptor for the salesmen table.
var Salesmen = repo.Descriptor[Salesman]{
	Name:       "salesmen",
	Table:      "salesmen",
	Alias:      "s",
	IDColumn:   "salesman_id",
	CodeColumn: "code",
	NameColumn: "name",
	Columns: []string{"salesman_id", "code", "name", "phone", "route_id",
		"flag", "device_token", "created_date_time", "updated_date_time"},
	Preserved:     preservedColumns,
	SearchColumns: []string{"s.code", "s.name", "r.name"},
	SelectBase: `SELECT s.salesman_id, s.code, s.name, s.phone, s.route_id,
		s.flag, s.device_token, s.created_date_time, s.updated_date_time,
		IFNULL(r.name, '')
	FROM salesmen s
	LEFT JOIN routes r ON r.route_id = s.route_id`,
	Endpoints: repo.Endpoints{
		Download: "salesmen/download",
	},
	Codec: salesmanCodec{},
}
