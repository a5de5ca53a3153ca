package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerDecode_Defaults(t *testing.T) {
	raw := json.RawMessage(`{"id":"15","name":"Kiosk","route_id":null,"flag":"1"}`)
	c, err := Customers.Codec.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, int64(15), c.CustomerID, "numeric string coerces")
	assert.Equal(t, "Kiosk", c.Name)
	assert.Equal(t, "", c.Code, "absent string defaults empty")
	assert.Equal(t, int64(0), c.RouteID, "null fk defaults zero")
	assert.Equal(t, 1, c.Flag)
	assert.Equal(t, "", c.DeviceToken, "device token never comes off the wire")
}

func TestCustomerDecode_AbsentFlagDefaultsActive(t *testing.T) {
	c, err := Customers.Codec.Decode(json.RawMessage(`{"id":1,"name":"X"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Flag)
}

func TestCustomerApply_MergesOnlyPresentFields(t *testing.T) {
	base := Customer{
		CustomerID: 1, Code: "C-01", Name: "Alpha", Address: "1 Old Road",
		Phone: "555-0100", RouteID: 5, Flag: 1,
		DeviceToken: "legacy", CreatedAt: "2024-01-01", UpdatedAt: "2024-01-01",
	}

	merged, err := Customers.Codec.Apply(base, json.RawMessage(
		`{"name":"Alpha Prime","phone":null,"updated_at":"2024-06-01"}`))
	require.NoError(t, err)

	assert.Equal(t, "Alpha Prime", merged.Name, "present field wins")
	assert.Equal(t, "1 Old Road", merged.Address, "absent field kept")
	assert.Equal(t, "555-0100", merged.Phone, "null field kept")
	assert.Equal(t, int64(5), merged.RouteID)
	assert.Equal(t, "legacy", merged.DeviceToken)
	assert.Equal(t, "2024-06-01", merged.UpdatedAt)
}

func TestCustomerApply_MalformedKeepsBase(t *testing.T) {
	base := Customer{CustomerID: 1, Name: "Alpha"}
	merged, err := Customers.Codec.Apply(base, json.RawMessage(`"not an object"`))
	require.Error(t, err)
	assert.Equal(t, base, merged, "on error the base comes back unchanged")
}

func TestSubCategoryWireUsesCatID(t *testing.T) {
	s, err := SubCategories.Codec.Decode(json.RawMessage(`{"id":3,"code":"SC-3","cat_id":11}`))
	require.NoError(t, err)
	assert.Equal(t, int64(11), s.CategoryID)

	body := SubCategories.Codec.Encode(s)
	assert.Equal(t, int64(11), body["cat_id"])
	_, hasDeviceToken := body["device_token"]
	assert.False(t, hasDeviceToken, "local-only column never goes on the wire")
}

func TestValuesMatchColumnCounts(t *testing.T) {
	assert.Len(t, Customers.Codec.Values(Customer{}), len(Customers.Columns))
	assert.Len(t, Suppliers.Codec.Values(Supplier{}), len(Suppliers.Columns))
	assert.Len(t, SubCategories.Codec.Values(SubCategory{}), len(SubCategories.Columns))
	assert.Len(t, Categories.Codec.Values(Category{}), len(Categories.Columns))
	assert.Len(t, Routes.Codec.Values(Route{}), len(Routes.Columns))
	assert.Len(t, Salesmen.Codec.Values(Salesman{}), len(Salesmen.Columns))
}
