package entities

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/routesales/internal/jsonx"
	"github.com/dmitrijs2005/routesales/internal/repo"
)

// Supplier is a goods supplier. Suppliers have no foreign keys, so reads
// need no joins.
type Supplier struct {
	SupplierID  int64
	Code        string
	Name        string
	Address     string
	Phone       string
	Flag        int
	DeviceToken string
	CreatedAt   string
	UpdatedAt   string
}

func (s Supplier) RecordID() int64         { return s.SupplierID }
func (s Supplier) RecordUpdatedAt() string { return s.UpdatedAt }

type supplierWire struct {
	ID        *jsonx.Int64  `json:"id"`
	Code      *jsonx.String `json:"code"`
	Name      *jsonx.String `json:"name"`
	Address   *jsonx.String `json:"address"`
	Phone     *jsonx.String `json:"phone"`
	Flag      *jsonx.Int    `json:"flag"`
	CreatedAt *jsonx.String `json:"created_at"`
	UpdatedAt *jsonx.String `json:"updated_at"`
}

type supplierCodec struct{}

func (supplierCodec) Values(s Supplier) []any {
	return []any{s.SupplierID, s.Code, s.Name, s.Address, s.Phone,
		s.Flag, s.DeviceToken, s.CreatedAt, s.UpdatedAt}
}

func (supplierCodec) ScanRow(sc repo.RowScanner) (Supplier, error) {
	var s Supplier
	err := sc.Scan(&s.SupplierID, &s.Code, &s.Name, &s.Address, &s.Phone,
		&s.Flag, &s.DeviceToken, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (supplierCodec) Apply(base Supplier, raw json.RawMessage) (Supplier, error) {
	var w supplierWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return base, fmt.Errorf("decode supplier: %w", err)
	}
	out := base
	out.SupplierID = int64Or(w.ID, base.SupplierID)
	out.Code = strOr(w.Code, base.Code)
	out.Name = strOr(w.Name, base.Name)
	out.Address = strOr(w.Address, base.Address)
	out.Phone = strOr(w.Phone, base.Phone)
	out.Flag = intOr(w.Flag, base.Flag)
	out.CreatedAt = strOr(w.CreatedAt, base.CreatedAt)
	out.UpdatedAt = strOr(w.UpdatedAt, base.UpdatedAt)
	return out, nil
}

func (c supplierCodec) Decode(raw json.RawMessage) (Supplier, error) {
	return c.Apply(Supplier{Flag: 1}, raw)
}

func (supplierCodec) Encode(s Supplier) map[string]any {
	return map[string]any{
		"id":         s.SupplierID,
		"code":       s.Code,
		"name":       s.Name,
		"address":    s.Address,
		"phone":      s.Phone,
		"flag":       s.Flag,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}

// Suppliers is the repository descriptor for the suppliers table.
var Suppliers = repo.Descriptor[Supplier]{
	Name:       "suppliers",
	Table:      "suppliers",
	Alias:      "sp",
	IDColumn:   "supplier_id",
	CodeColumn: "code",
	NameColumn: "name",
	Columns: []string{"supplier_id", "code", "name", "address", "phone",
		"flag", "device_token", "created_date_time", "updated_date_time"},
	Preserved:     preservedColumns,
	SearchColumns: []string{"sp.code", "sp.name"},
	SelectBase: `SELECT sp.supplier_id, sp.code, sp.name, sp.address, sp.phone,
		sp.flag, sp.device_token, sp.created_date_time, sp.updated_date_time
	FROM suppliers sp`,
	Endpoints: repo.Endpoints{
		Download: "suppliers/download",
		Create:   "suppliers/create",
		Update:   "suppliers/update",
		Flag:     "suppliers/flag",
	},
	Codec: supplierCodec{},
}
