package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/routesales/internal/session"
	"github.com/dmitrijs2005/routesales/internal/syncer"
)

func (a *App) sync(ctx context.Context, args []string) error {
	sess, err := a.requireSession(ctx)
	if err != nil {
		return err
	}
	o := a.orchestrator(sess)

	var reports []syncer.Report
	if len(args) > 0 {
		reports = []syncer.Report{o.SyncEntity(ctx, args[0])}
	} else {
		reports = o.SyncAll(ctx)
	}
	return a.printReports(reports)
}

func (a *App) resync(ctx context.Context) error {
	sess, err := a.requireSession(ctx)
	if err != nil {
		return err
	}
	return a.printReports(a.orchestrator(sess).FullResync(ctx))
}

func (a *App) requireSession(ctx context.Context) (session.Session, error) {
	sess, err := a.sess.Current(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("run 'routesales login' first: %w", err)
	}
	if !a.sess.Valid(ctx) {
		return session.Session{}, fmt.Errorf("stored token has expired, run 'routesales login'")
	}
	return sess, nil
}

func (a *App) printReports(reports []syncer.Report) error {
	var failed int
	for _, rep := range reports {
		if rep.Err != nil {
			failed++
			fmt.Fprintf(a.out, "%-15s FAILED after %d page(s): %v\n", rep.Entity, rep.Pages, rep.Err)
			continue
		}
		line := fmt.Sprintf("%-15s %d page(s), %d record(s)", rep.Entity, rep.Pages, rep.Applied)
		if len(rep.Retried) > 0 {
			line += fmt.Sprintf(", %d recovered", len(rep.Retried))
		}
		if len(rep.Skipped) > 0 {
			line += fmt.Sprintf(", %d skipped %v", len(rep.Skipped), rep.Skipped)
		}
		fmt.Fprintln(a.out, line)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d entities failed", failed, len(reports))
	}
	return nil
}
