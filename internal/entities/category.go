package entities

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/routesales/internal/jsonx"
	"github.com/dmitrijs2005/routesales/internal/repo"
)

// Category is download-only reference data: the client never creates or
// edits categories, it only mirrors them for subcategory joins.
type Category struct {
	CategoryID  int64
	Code        string
	Name        string
	Flag        int
	DeviceToken string
	CreatedAt   string
	UpdatedAt   string
}

func (c Category) RecordID() int64         { return c.CategoryID }
func (c Category) RecordUpdatedAt() string { return c.UpdatedAt }

type categoryWire struct {
	ID        *jsonx.Int64  `json:"id"`
	Code      *jsonx.String `json:"code"`
	Name      *jsonx.String `json:"name"`
	Flag      *jsonx.Int    `json:"flag"`
	CreatedAt *jsonx.String `json:"created_at"`
	UpdatedAt *jsonx.String `json:"updated_at"`
}

type categoryCodec struct{}

func (categoryCodec) Values(c Category) []any {
	return []any{c.CategoryID, c.Code, c.Name, c.Flag, c.DeviceToken, c.CreatedAt, c.UpdatedAt}
}

func (categoryCodec) ScanRow(sc repo.RowScanner) (Category, error) {
	var c Category
	err := sc.Scan(&c.CategoryID, &c.Code, &c.Name, &c.Flag, &c.DeviceToken, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (categoryCodec) Apply(base Category, raw json.RawMessage) (Category, error) {
	var w categoryWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return base, fmt.Errorf("decode category: %w", err)
	}
	out := base
	out.CategoryID = int64Or(w.ID, base.CategoryID)
	out.Code = strOr(w.Code, base.Code)
	out.Name = strOr(w.Name, base.Name)
	out.Flag = intOr(w.Flag, base.Flag)
	out.CreatedAt = strOr(w.CreatedAt, base.CreatedAt)
	out.UpdatedAt = strOr(w.UpdatedAt, base.UpdatedAt)
	return out, nil
}

func (c categoryCodec) Decode(raw json.RawMessage) (Category, error) {
	return c.Apply(Category{Flag: 1}, raw)
}

func (categoryCodec) Encode(c Category) map[string]any {
	return map[string]any{
		"id":         c.CategoryID,
		"code":       c.Code,
		"name":       c.Name,
		"flag":       c.Flag,
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}

// Categories is the repository descriptor for the categories table.
// Create/Update/Flag endpoints are intentionally absent.
var Categories = repo.Descriptor[Category]{
	Name:       "categories",
	Table:      "categories",
	Alias:      "ct",
	IDColumn:   "category_id",
	CodeColumn: "code",
	NameColumn: "name",
	Columns: []string{"category_id", "code", "name",
		"flag", "device_token", "created_date_time", "updated_date_time"},
	Preserved:     preservedColumns,
	SearchColumns: []string{"ct.code", "ct.name"},
	SelectBase: `SELECT ct.category_id, ct.code, ct.name,
		ct.flag, ct.device_token, ct.created_date_time, ct.updated_date_time
	FROM categories ct`,
	Endpoints: repo.Endpoints{
		Download: "categories/download",
	},
	Codec: categoryCodec{},
}
