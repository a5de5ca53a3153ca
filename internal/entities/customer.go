package entities

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/routesales/internal/jsonx"
	"github.com/dmitrijs2005/routesales/internal/repo"
)

// Customer is a retail outlet served on a route. RouteName and SalesmanName
// are resolved by join at read time and never stored.
type Customer struct {
	CustomerID  int64
	Code        string
	Name        string
	Address     string
	Phone       string
	RouteID     int64
	SalesmanID  int64
	Flag        int
	DeviceToken string
	CreatedAt   string
	UpdatedAt   string

	RouteName    string
	SalesmanName string
}

func (c Customer) RecordID() int64         { return c.CustomerID }
func (c Customer) RecordUpdatedAt() string { return c.UpdatedAt }

type customerWire struct {
	ID         *jsonx.Int64  `json:"id"`
	Code       *jsonx.String `json:"code"`
	Name       *jsonx.String `json:"name"`
	Address    *jsonx.String `json:"address"`
	Phone      *jsonx.String `json:"phone"`
	RouteID    *jsonx.Int64  `json:"route_id"`
	SalesmanID *jsonx.Int64  `json:"salesman_id"`
	Flag       *jsonx.Int    `json:"flag"`
	CreatedAt  *jsonx.String `json:"created_at"`
	UpdatedAt  *jsonx.String `json:"updated_at"`
}

type customerCodec struct{}

func (customerCodec) Values(c Customer) []any {
	return []any{c.CustomerID, c.Code, c.Name, c.Address, c.Phone,
		c.RouteID, c.SalesmanID, c.Flag, c.DeviceToken, c.CreatedAt, c.UpdatedAt}
}

func (customerCodec) ScanRow(s repo.RowScanner) (Customer, error) {
	var c Customer
	err := s.Scan(&c.CustomerID, &c.Code, &c.Name, &c.Address, &c.Phone,
		&c.RouteID, &c.SalesmanID, &c.Flag, &c.DeviceToken, &c.CreatedAt, &c.UpdatedAt,
		&c.RouteName, &c.SalesmanName)
	return c, err
}

func (customerCodec) Apply(base Customer, raw json.RawMessage) (Customer, error) {
	var w customerWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return base, fmt.Errorf("decode customer: %w", err)
	}
	out := base
	out.CustomerID = int64Or(w.ID, base.CustomerID)
	out.Code = strOr(w.Code, base.Code)
	out.Name = strOr(w.Name, base.Name)
	out.Address = strOr(w.Address, base.Address)
	out.Phone = strOr(w.Phone, base.Phone)
	out.RouteID = int64Or(w.RouteID, base.RouteID)
	out.SalesmanID = int64Or(w.SalesmanID, base.SalesmanID)
	out.Flag = intOr(w.Flag, base.Flag)
	out.CreatedAt = strOr(w.CreatedAt, base.CreatedAt)
	out.UpdatedAt = strOr(w.UpdatedAt, base.UpdatedAt)
	return out, nil
}

func (c customerCodec) Decode(raw json.RawMessage) (Customer, error) {
	return c.Apply(Customer{Flag: 1}, raw)
}

func (customerCodec) Encode(c Customer) map[string]any {
	return map[string]any{
		"id":          c.CustomerID,
		"code":        c.Code,
		"name":        c.Name,
		"address":     c.Address,
		"phone":       c.Phone,
		"route_id":    c.RouteID,
		"salesman_id": c.SalesmanID,
		"flag":        c.Flag,
		"created_at":  c.CreatedAt,
		"updated_at":  c.UpdatedAt,
	}
}

// Customers is the repository descriptor for the customers table.
var Customers = repo.Descriptor[Customer]{
	Name:       "customers",
	Table:      "customers",
	Alias:      "c",
	IDColumn:   "customer_id",
	CodeColumn: "code",
	NameColumn: "name",
	Columns: []string{"customer_id", "code", "name", "address", "phone",
		"route_id", "salesman_id", "flag", "device_token",
		"created_date_time", "updated_date_time"},
	Preserved:     preservedColumns,
	SearchColumns: []string{"c.code", "c.name", "r.name", "s.name"},
	SelectBase: `SELECT c.customer_id, c.code, c.name, c.address, c.phone,
		c.route_id, c.salesman_id, c.flag, c.device_token,
		c.created_date_time, c.updated_date_time,
		IFNULL(r.name, ''), IFNULL(s.name, '')
	FROM customers c
	LEFT JOIN routes r ON r.route_id = c.route_id
	LEFT JOIN salesmen s ON s.salesman_id = c.salesman_id`,
	Endpoints: repo.Endpoints{
		Download: "customers/download",
		Create:   "customers/create",
		Update:   "customers/update",
		Flag:     "customers/flag",
	},
	Codec: customerCodec{},
}
