// Package entities declares the six synced entity types: their value
// objects, tolerant wire codecs and repository descriptors. All behavior
// lives in internal/repo; this package is the per-entity configuration the
// generic mechanism is instantiated with.
//
// Wire DTOs use pointer jsonx types so a field that is absent or null in a
// server response is distinguishable from a zero value. That distinction is
// what makes merge-on-partial-response work: Apply only overwrites fields
// the server actually sent.
package entities

import (
	"github.com/dmitrijs2005/routesales/internal/jsonx"
)

// preservedColumns are kept across updates unless the incoming record
// supplies a non-empty value: the legacy device-token column (always empty
// for new inserts, retained for compatibility) and the creation timestamp.
var preservedColumns = []string{"device_token", "created_date_time"}

func strOr(p *jsonx.String, def string) string {
	if p == nil {
		return def
	}
	return string(*p)
}

func intOr(p *jsonx.Int, def int) int {
	if p == nil {
		return def
	}
	return int(*p)
}

func int64Or(p *jsonx.Int64, def int64) int64 {
	if p == nil {
		return def
	}
	return int64(*p)
}
