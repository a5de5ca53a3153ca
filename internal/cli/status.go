package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/routesales/internal/session"
)

func (a *App) status(ctx context.Context) error {
	sess, err := a.sess.Current(ctx)
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "Not logged in")
	case err != nil:
		return err
	default:
		fmt.Fprintf(a.out, "Logged in as %s (user %d, device %s)\n",
			sess.UserType, sess.UserID, sess.DeviceID)
		if token := a.sess.AccessToken(ctx); token != "" {
			if exp, err := session.TokenExpiry(token); err == nil && !exp.IsZero() {
				fmt.Fprintf(a.out, "Token expires %s\n", exp.Local().Format("2006-01-02 15:04:05"))
			}
		} else {
			fmt.Fprintln(a.out, "Stored token has expired")
		}
	}

	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ENTITY\tLAST SYNC\tWATERMARK\tNEXT PART")
	for _, name := range []string{"categories", "routes", "salesmen",
		"subcategories", "suppliers", "customers"} {
		st, err := a.states.Get(ctx, name, a.cfg.PageLimit)
		if err != nil {
			return err
		}
		syncedAt := st.SyncedAt
		if syncedAt == "" {
			syncedAt = "never"
		}
		watermark := st.UpdateDate
		if watermark == "" {
			watermark = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", name, syncedAt, watermark, st.PartNo)
	}
	return nil
}
