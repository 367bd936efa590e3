// Package processor runs the Daily-to-To-Do conversion for each account.
package processor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/harrisonrobin/dailytodo/pkg/classify"
	"github.com/harrisonrobin/dailytodo/pkg/config"
	"github.com/harrisonrobin/dailytodo/pkg/convert"
	"github.com/harrisonrobin/dailytodo/pkg/habitica"
)

// Service is the slice of the Habitica API the pipeline needs.
type Service interface {
	GetUser(ctx context.Context) (*habitica.User, error)
	ListDailies(ctx context.Context) ([]habitica.Daily, error)
	CreateTodo(ctx context.Context, todo habitica.Todo) (*habitica.Todo, error)
	ScoreUp(ctx context.Context, taskID string) error
}

// Mirror receives every To-Do created. Its failures are only logged.
type Mirror interface {
	MirrorTodo(ctx context.Context, todo *habitica.Todo) error
}

// Processor converts the due Dailies of a single account.
type Processor struct {
	Service Service
	Log     logrus.FieldLogger
	Mirror  Mirror
	Now     func() time.Time
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Process runs the pipeline for account. It never panics; any failure ends
// up in the returned Result.
func (p *Processor) Process(ctx context.Context, account config.Account) (res Result) {
	res = Result{Account: account.Username}
	defer func() {
		if r := recover(); r != nil {
			res.Status = StatusFailed
			res.Reason = fmt.Sprint(r)
			p.Log.Errorf("An error occurred for %s: %v", account.Username, r)
		}
	}()

	p.Log.Infof("Processing tasks for %s", account.Username)

	if ok, reason := p.loggedInToday(ctx); !ok {
		p.Log.Infof("Skipping %s, user has not logged in today.", account.Username)
		res.Status = StatusSkipped
		res.Reason = reason
		return res
	}

	dailies, err := p.Service.ListDailies(ctx)
	if err != nil {
		p.Log.Errorf("An error occurred for %s: %v", account.Username, err)
		res.Status = StatusFailed
		res.Reason = errors.Cause(err).Error()
		res.Errors = append(res.Errors, err)
		return res
	}

	records := classify.ClassifyAll(dailies, account.Criteria)
	res.Converted = len(records)
	p.Log.Infof("Found %d Dailies to convert.", len(records))

	for _, rec := range records {
		if err := p.createTodo(ctx, rec); err != nil {
			res.Errors = append(res.Errors, err)
		} else {
			res.Created++
		}
		if err := p.completeDaily(ctx, rec.Task.ID); err != nil {
			res.Errors = append(res.Errors, err)
		} else {
			res.Completed++
		}
	}

	res.Status = StatusSucceeded
	if len(res.Errors) > 0 {
		res.Status = StatusPartial
		res.Reason = fmt.Sprintf("%d operation(s) failed", len(res.Errors))
	}
	return res
}

// loggedInToday compares the UTC date of the account's last update with
// today's UTC date. Any failure to tell counts as not logged in.
func (p *Processor) loggedInToday(ctx context.Context) (bool, string) {
	user, err := p.Service.GetUser(ctx)
	if err != nil {
		p.Log.Warnf("Failed to fetch user data: %s", payload(err))
		return false, "user data unavailable"
	}
	updated, ok := user.UpdatedAt()
	if !ok {
		p.Log.Warn("No updated timestamp found in user data.")
		return false, "no updated timestamp"
	}
	if !sameDay(updated.UTC(), p.now().UTC()) {
		return false, "not logged in today"
	}
	return true, ""
}

func (p *Processor) createTodo(ctx context.Context, rec classify.Record) error {
	todo := convert.Build(rec, p.now())
	created, err := p.Service.CreateTodo(ctx, todo)
	if err != nil {
		p.Log.Errorf("Failed to create To-Do: %s", payload(err))
		return errors.WithMessagef(err, "create to-do for daily %s", rec.Task.ID)
	}
	p.Log.Infof("Created To-Do: %s with priority %v", todo.Text, todo.Priority)

	if p.Mirror != nil && created != nil {
		if err := p.Mirror.MirrorTodo(ctx, created); err != nil {
			p.Log.Warnf("Failed to mirror To-Do %s to calendar: %v", todo.Text, err)
		}
	}
	return nil
}

func (p *Processor) completeDaily(ctx context.Context, id string) error {
	if err := p.Service.ScoreUp(ctx, id); err != nil {
		p.Log.Errorf("Failed to mark Daily as completed: %s", payload(err))
		return errors.WithMessagef(err, "complete daily %s", id)
	}
	p.Log.Infof("Marked Daily as completed: %s", id)
	return nil
}

// payload prefers the raw response body of an API error.
func payload(err error) string {
	var apiErr *habitica.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return apiErr.Body
	}
	return err.Error()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ServiceFactory builds the API collaborator for one account.
type ServiceFactory func(account config.Account) Service

// LoggerFactory opens the log stream for one account.
type LoggerFactory func(account config.Account) (logrus.FieldLogger, io.Closer, error)

// Runner processes accounts one after the other.
type Runner struct {
	NewService ServiceFactory
	OpenLog    LoggerFactory
	Mirror     Mirror
	Now        func() time.Time
	// Log receives run-level messages, such as accounts whose log could
	// not be opened.
	Log logrus.FieldLogger
}

// Run returns one Result per account, in order.
func (r *Runner) Run(ctx context.Context, accounts []config.Account) []Result {
	results := make([]Result, 0, len(accounts))
	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Account: account.Username, Status: StatusFailed, Reason: err.Error()})
			continue
		}
		results = append(results, r.runAccount(ctx, account))
	}
	return results
}

func (r *Runner) runAccount(ctx context.Context, account config.Account) Result {
	log, closer, err := r.OpenLog(account)
	if err != nil {
		r.Log.Errorf("Cannot open log for %s: %v", account.Username, err)
		return Result{Account: account.Username, Status: StatusFailed, Reason: err.Error(), Errors: []error{err}}
	}
	if closer != nil {
		defer closer.Close()
	}

	p := &Processor{
		Service: r.NewService(account),
		Log:     log,
		Mirror:  r.Mirror,
		Now:     r.Now,
	}
	res := p.Process(ctx, account)
	r.Log.Info(res.String())
	return res
}
