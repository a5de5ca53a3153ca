// Package cli wires the sync stack together and dispatches the routesales
// subcommands: login, sync, resync, list and status.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/routesales/internal/api"
	"github.com/dmitrijs2005/routesales/internal/config"
	"github.com/dmitrijs2005/routesales/internal/entities"
	"github.com/dmitrijs2005/routesales/internal/logging"
	"github.com/dmitrijs2005/routesales/internal/repo"
	"github.com/dmitrijs2005/routesales/internal/session"
	"github.com/dmitrijs2005/routesales/internal/store"
	"github.com/dmitrijs2005/routesales/internal/syncer"
)

type App struct {
	cfg    *config.Config
	db     *sql.DB
	log    logging.Logger
	client *api.Client
	sess   *session.Manager
	states *syncer.StateStore
	reader *bufio.Reader
	out    io.Writer

	categories    *repo.Repository[entities.Category]
	routes        *repo.Repository[entities.Route]
	salesmen      *repo.Repository[entities.Salesman]
	subcategories *repo.Repository[entities.SubCategory]
	suppliers     *repo.Repository[entities.Supplier]
	customers     *repo.Repository[entities.Customer]
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewDefault(c.Verbose)

	db, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "database init failed", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	client := api.NewClient(c.ServerURL, api.WithTimeout(c.HTTPTimeout))
	sess := session.NewManager(db, client)
	client.SetTokenSource(sess)

	a := &App{
		cfg:    c,
		db:     db,
		log:    log,
		client: client,
		sess:   sess,
		states: syncer.NewStateStore(db),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,

		categories:    repo.New(db, client, entities.Categories, log),
		routes:        repo.New(db, client, entities.Routes, log),
		salesmen:      repo.New(db, client, entities.Salesmen, log),
		subcategories: repo.New(db, client, entities.SubCategories, log),
		suppliers:     repo.New(db, client, entities.Suppliers, log),
		customers:     repo.New(db, client, entities.Customers, log),
	}
	return a, nil
}

// orchestrator builds a fresh orchestrator bound to the stored session.
// Parents are registered before the entities that join against them.
func (a *App) orchestrator(sess session.Session) *syncer.Orchestrator {
	o := syncer.New(a.states, a.log, syncer.Options{
		UserType:  sess.UserType,
		UserID:    sess.UserID,
		PageLimit: a.cfg.PageLimit,
	})
	o.Register(a.categories, a.routes, a.salesmen,
		a.subcategories, a.suppliers, a.customers)
	return o
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run dispatches a subcommand. args is the command line after flag
// stripping, i.e. starting with the subcommand name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout(ctx)
	case "sync":
		return a.sync(ctx, rest)
	case "resync":
		return a.resync(ctx)
	case "list":
		return a.list(ctx, rest)
	case "status":
		return a.status(ctx)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `Usage: routesales [flags] <command>

Commands:
  login            authenticate against the server
  logout           drop the stored session
  sync [entity]    download changes for all entities, or one
  resync           clear the local cache and download everything
  list <entity> [search]
                   show cached records, optionally filtered
  status           show session and per-entity sync state

Flags:
  -a URL    server base URL
  -d PATH   local database path
  -l N      download page size
  -t SEC    HTTP timeout in seconds
  -c FILE   JSON config file
  -v        verbose logging`)
}
