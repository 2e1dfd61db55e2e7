// Package inventory inspects every environment of a project at once.
package inventory

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmagro/sitesettings/internal/env"
	"github.com/dmagro/sitesettings/internal/selector"
	"github.com/dmagro/sitesettings/internal/vhost"
)

// EnvironmentStatus describes the vhost file of one environment.
type EnvironmentStatus struct {
	Environment selector.Environment
	Path        string
	Exists      bool
	Vars        vhost.EnvMap
	DBComplete  bool // db_username, db_password and db_name all present
	Err         error
	ReadTime    time.Duration
}

// Report is the inspection result for a project, in live, dev, test order.
type Report struct {
	Project      string
	VhostDir     string
	Environments []EnvironmentStatus
}

// Configured returns the environments whose database credentials are
// complete.
func (r Report) Configured() []selector.Environment {
	var out []selector.Environment
	for _, s := range r.Environments {
		if s.DBComplete {
			out = append(out, s.Environment)
		}
	}
	return out
}

// Inspect reads the vhost files of all environments concurrently. Read
// failures are recorded per environment; the only error returned is ctx's.
func Inspect(ctx context.Context, sel *selector.Selector) (Report, error) {
	report := Report{
		Project:      sel.Project,
		VhostDir:     sel.VhostDir,
		Environments: make([]EnvironmentStatus, len(selector.Environments)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range selector.Environments {
		i, e := i, e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns slot i, no locking needed.
			report.Environments[i] = inspectOne(sel, e)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return report, nil
}

func inspectOne(sel *selector.Selector, e selector.Environment) EnvironmentStatus {
	status := EnvironmentStatus{
		Environment: e,
		Path:        sel.Path(e),
		Exists:      sel.Exists(e),
	}
	if !status.Exists {
		status.Vars = vhost.EnvMap{}
		return status
	}

	start := time.Now()
	status.Vars, status.Err = vhost.ReadFile(status.Path)
	status.ReadTime = time.Since(start)
	status.DBComplete = status.Vars.Has(env.DatabaseKeys...)
	return status
}
