package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/routesales/internal/config"
	"github.com/dmitrijs2005/routesales/internal/entities"
	"github.com/dmitrijs2005/routesales/internal/failure"
	"github.com/dmitrijs2005/routesales/internal/syncer"
)

func newTestApp(t *testing.T, serverURL string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		ServerURL:    serverURL,
		DatabasePath: ":memory:",
		PageLimit:    100,
		HTTPTimeout:  5 * time.Second,
	}
	app, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	var out bytes.Buffer
	app.out = &out
	return app, &out
}

func TestRun_UnknownCommand(t *testing.T) {
	app, out := newTestApp(t, "http://unused.invalid")

	err := app.Run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	app, out := newTestApp(t, "http://unused.invalid")

	require.NoError(t, app.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "sync [entity]")
}

func TestList_PrintsSeededRows(t *testing.T) {
	app, out := newTestApp(t, "http://unused.invalid")
	ctx := context.Background()

	require.NoError(t, app.suppliers.AddOne(ctx, entities.Supplier{
		SupplierID: 1, Code: "S-01", Name: "Fresh Farms", Phone: "555-0101", Flag: 1,
	}))
	require.NoError(t, app.suppliers.AddOne(ctx, entities.Supplier{
		SupplierID: 2, Code: "S-02", Name: "Metro Goods", Flag: 1,
	}))

	require.NoError(t, app.list(ctx, []string{"suppliers"}))
	assert.Contains(t, out.String(), "Fresh Farms")
	assert.Contains(t, out.String(), "Metro Goods")

	out.Reset()
	require.NoError(t, app.list(ctx, []string{"suppliers", "fresh"}))
	assert.Contains(t, out.String(), "Fresh Farms")
	assert.NotContains(t, out.String(), "Metro Goods")
}

func TestList_JoinedNames(t *testing.T) {
	app, out := newTestApp(t, "http://unused.invalid")
	ctx := context.Background()

	require.NoError(t, app.routes.AddOne(ctx, entities.Route{
		RouteID: 5, Code: "R-05", Name: "Harbor", Flag: 1,
	}))
	require.NoError(t, app.customers.AddOne(ctx, entities.Customer{
		CustomerID: 1, Code: "C-01", Name: "Corner Shop", RouteID: 5, Flag: 1,
	}))

	require.NoError(t, app.list(ctx, []string{"customers"}))
	assert.Contains(t, out.String(), "Harbor")
}

func TestList_UnknownEntity(t *testing.T) {
	app, _ := newTestApp(t, "http://unused.invalid")

	err := app.list(context.Background(), []string{"widgets"})
	require.Error(t, err)
}

func TestSync_RequiresLogin(t *testing.T) {
	app, _ := newTestApp(t, "http://unused.invalid")

	err := app.sync(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login")
}

func TestStatus_NotLoggedIn(t *testing.T) {
	app, out := newTestApp(t, "http://unused.invalid")

	require.NoError(t, app.status(context.Background()))
	assert.Contains(t, out.String(), "Not logged in")
	assert.Contains(t, out.String(), "customers")
	assert.Contains(t, out.String(), "never")
}

func TestPrintReports(t *testing.T) {
	app, out := newTestApp(t, "http://unused.invalid")

	err := app.printReports([]syncer.Report{
		{Entity: "routes", Pages: 2, Applied: 150},
		{Entity: "customers", Pages: 3, Applied: 40, Retried: []int64{7}, Skipped: []int64{9}},
		{Entity: "suppliers", Pages: 1, Err: failure.Server("rejected")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")

	s := out.String()
	assert.Contains(t, s, "150 record(s)")
	assert.Contains(t, s, "1 recovered")
	assert.Contains(t, s, "1 skipped [9]")
	assert.Contains(t, s, "FAILED")
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("  alice  \n"))

	got, err := getSimpleText(reader, "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Contains(t, out.String(), "Username")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("bob"))

	got, err := getSimpleText(reader, "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "bob", got)
}

func TestGetPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) { return []byte("hunter2"), nil }

	var out bytes.Buffer
	got, err := getPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestGetPassword_Error(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) { return nil, errors.New("no tty") }

	var out bytes.Buffer
	_, err := getPassword(&out)
	require.Error(t, err)
}
