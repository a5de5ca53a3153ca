package entities

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/routesales/internal/jsonx"
	"github.com/dmitrijs2005/routesales/internal/repo"
)

// SubCategory is a product sub-category under a category. The wire name for
// the parent reference is cat_id.
type SubCategory struct {
	SubCategoryID int64
	Code          string
	Name          string
	CategoryID    int64
	Flag          int
	DeviceToken   string
	CreatedAt     string
	UpdatedAt     string

	CategoryName string
}

func (s SubCategory) RecordID() int64         { return s.SubCategoryID }
func (s SubCategory) RecordUpdatedAt() string { return s.UpdatedAt }

type subCategoryWire struct {
	ID         *jsonx.Int64  `json:"id"`
	Code       *jsonx.String `json:"code"`
	Name       *jsonx.String `json:"name"`
	CategoryID *jsonx.Int64  `json:"cat_id"`
	Flag       *jsonx.Int    `json:"flag"`
	CreatedAt  *jsonx.String `json:"created_at"`
	UpdatedAt  *jsonx.String `json:"updated_at"`
}

type subCategoryCodec struct{}

func (subCategoryCodec) Values(s SubCategory) []any {
	return []any{s.SubCategoryID, s.Code, s.Name, s.CategoryID,
		s.Flag, s.DeviceToken, s.CreatedAt, s.UpdatedAt}
}

func (subCategoryCodec) ScanRow(sc repo.RowScanner) (SubCategory, error) {
	var s SubCategory
	err := sc.Scan(&s.SubCategoryID, &s.Code, &s.Name, &s.CategoryID,
		&s.Flag, &s.DeviceToken, &s.CreatedAt, &s.UpdatedAt, &s.CategoryName)
	return s, err
}

func (subCategoryCodec) Apply(base SubCategory, raw json.RawMessage) (SubCategory, error) {
	var w subCategoryWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return base, fmt.Errorf("decode subcategory: %w", err)
	}
	out := base
	out.SubCategoryID = int64Or(w.ID, base.SubCategoryID)
	out.Code = strOr(w.Code, base.Code)
	out.Name = strOr(w.Name, base.Name)
	out.CategoryID = int64Or(w.CategoryID, base.CategoryID)
	out.Flag = intOr(w.Flag, base.Flag)
	out.CreatedAt = strOr(w.CreatedAt, base.CreatedAt)
	out.UpdatedAt = strOr(w.UpdatedAt, base.UpdatedAt)
	return out, nil
}

func (c subCategoryCodec) Decode(raw json.RawMessage) (SubCategory, error) {
	return c.Apply(SubCategory{Flag: 1}, raw)
}

func (subCategoryCodec) Encode(s SubCategory) map[string]any {
	return map[string]any{
		"id":         s.SubCategoryID,
		"code":       s.Code,
		"name":       s.Name,
		"cat_id":     s.CategoryID,
		"flag":       s.Flag,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}

// SubCategories is the repository descriptor for the subcategories table.
var SubCategories = repo.Descriptor[SubCategory]{
	Name:       "subcategories",
	Table:      "subcategories",
	Alias:      "sc",
	IDColumn:   "subcategory_id",
	CodeColumn: "code",
	NameColumn: "name",
	Columns: []string{"subcategory_id", "code", "name", "cat_id",
		"flag", "device_token", "created_date_time", "updated_date_time"},
	Preserved:     preservedColumns,
	SearchColumns: []string{"sc.code", "sc.name", "ct.name"},
	SelectBase: `SELECT sc.subcategory_id, sc.code, sc.name, sc.cat_id,
		sc.flag, sc.device_token, sc.created_date_time, sc.updated_date_time,
		IFNULL(ct.name, '')
	FROM subcategories sc
	LEFT JOIN categories ct ON ct.category_id = sc.cat_id`,
	Endpoints: repo.Endpoints{
		Download: "subcategories/download",
		Create:   "subcategories/create",
		Update:   "subcategories/update",
		Flag:     "subcategories/flag",
	},
	Codec: subCategoryCodec{},
}
