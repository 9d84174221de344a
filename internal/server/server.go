// Package server runs the long-lived bench agent: an HTTP API over the
// section registry, live websocket progress, Prometheus metrics,
// cron-scheduled runs and failure notifications.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/benchrig/rigcheck/internal/gate"
	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/history"
	"github.com/benchrig/rigcheck/internal/notify"
)

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// Options configure the agent.
type Options struct {
	Addr     string
	Registry *harness.Registry

	// Rig identifies this bench in notifications, typically the hostname.
	Rig string

	// History, Notifiers and Gates are optional.
	History   *history.Store
	Notifiers *notify.Registry
	Gates     gate.Set

	// Schedule is a standard cron expression for periodic runs. When
	// ScheduleSections is empty a scheduled run covers all enabled sections.
	Schedule         string
	ScheduleSections []string

	Logger *logrus.Logger
}

// Server is the bench agent.
type Server struct {
	opts     Options
	log      *logrus.Logger
	hub      *Hub
	agg      *harness.Aggregator
	schedule cron.Schedule
	done     chan struct{}

	httpServer *http.Server

	mu          sync.Mutex
	running     bool
	lastReports []harness.SectionReport
	lastSummary *harness.Summary
	lastStarted time.Time
}

// New validates the options and builds the agent.
func New(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}

	s := &Server{
		opts: opts,
		log:  opts.Logger,
		agg:  harness.NewAggregator(),
		done: make(chan struct{}),
	}
	s.hub = newHub(opts.Logger)

	if opts.Schedule != "" {
		schedule, err := cron.ParseStandard(opts.Schedule)
		if err != nil {
			return nil, fmt.Errorf("parse schedule %q: %w", opts.Schedule, err)
		}
		s.schedule = schedule
	}

	s.httpServer = &http.Server{Addr: opts.Addr, Handler: s.Routes()}
	return s, nil
}

// Run blocks serving HTTP traffic, starting the scheduler when configured.
func (s *Server) Run() error {
	if s.schedule != nil {
		go s.scheduleLoop()
	}
	s.log.Infof("bench agent listening on %s", s.opts.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the scheduler and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) scheduleLoop() {
	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			return
		case <-timer.C:
			req := harness.AllEnabled()
			if len(s.opts.ScheduleSections) > 0 {
				req = harness.Explicit(s.opts.ScheduleSections...)
			}
			s.log.Infof("scheduled run starting (%s)", req)
			if _, err := s.RunOnce(context.Background(), req); err != nil {
				s.log.Warnf("scheduled run: %v", err)
			}
		}
	}
}

func (s *Server) acquireRun() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunInProgress
	}
	s.running = true
	return nil
}

func (s *Server) releaseRun() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// RunOnce executes one run synchronously: progress streams to websocket
// clients, results land in the history store, gates are applied and
// notifiers fire. Concurrent calls are rejected with ErrRunInProgress.
func (s *Server) RunOnce(ctx context.Context, req harness.RunRequest) (harness.Summary, error) {
	if err := s.acquireRun(); err != nil {
		return harness.Summary{}, err
	}
	defer s.releaseRun()
	return s.execute(ctx, req)
}

func (s *Server) execute(ctx context.Context, req harness.RunRequest) (harness.Summary, error) {
	started := time.Now()
	runner := harness.New(harness.Options{
		Progress:   hubProgress{hub: s.hub},
		Aggregator: s.agg,
	})

	reports, summary, err := runner.Run(ctx, s.opts.Registry, req)
	if err != nil {
		s.log.Errorf("run %s: %v", req, err)
		s.hub.Broadcast(wsEvent{Type: eventRunCompleted, Error: err.Error()})
		return summary, err
	}

	violations := s.opts.Gates.Check(reports)
	for _, v := range violations {
		s.log.Warnf("gate failed for %s: %s", v.SectionID, v.Expression)
	}
	if s.opts.Gates.Failed(reports, violations) {
		summary.ExitCode = 1
	} else {
		summary.ExitCode = 0
	}

	if s.opts.History != nil {
		if _, err := s.opts.History.RecordRun(ctx, req.String(), started, reports); err != nil {
			s.log.Errorf("record run: %v", err)
		}
	}

	if s.opts.Notifiers != nil {
		event := notify.Event{
			Rig:       s.opts.Rig,
			Request:   req.String(),
			StartedAt: started,
			Summary:   summary,
			Reports:   reports,
		}
		for _, err := range s.opts.Notifiers.Dispatch(ctx, event) {
			s.log.Errorf("%v", err)
		}
	}

	s.mu.Lock()
	s.lastReports = reports
	s.lastSummary = &summary
	s.lastStarted = started
	s.mu.Unlock()

	s.hub.Broadcast(wsEvent{Type: eventRunCompleted, Summary: &summary, Violations: violations})
	s.log.Infof("run %s complete: %d passed, %d failed (%s)",
		req, summary.Passed, summary.Failed, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// snapshot returns the most recent run results.
func (s *Server) snapshot() ([]harness.SectionReport, *harness.Summary, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reports := make([]harness.SectionReport, len(s.lastReports))
	copy(reports, s.lastReports)
	return reports, s.lastSummary, s.lastStarted
}
