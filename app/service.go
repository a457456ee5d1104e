// Package app wires configuration, storage, channels and the dispatch
// manager into a runnable greetd service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apicontacts "github.com/kilianp07/greetd/api/contacts"
	"github.com/kilianp07/greetd/api/deliveries"
	"github.com/kilianp07/greetd/config"
	"github.com/kilianp07/greetd/core/contacts"
	"github.com/kilianp07/greetd/core/delivery"
	"github.com/kilianp07/greetd/core/dispatch"
	coremetrics "github.com/kilianp07/greetd/core/metrics"
	coremon "github.com/kilianp07/greetd/core/monitoring"
	"github.com/kilianp07/greetd/core/notify"
	"github.com/kilianp07/greetd/infra/logger"
	"github.com/kilianp07/greetd/infra/metrics"
	"github.com/kilianp07/greetd/infra/monitoring"
	_ "github.com/kilianp07/greetd/infra/notify"
)

// Service holds the collaborators of one greetd process.
type Service struct {
	Config   *config.Config
	Contacts *contacts.Store
	Log      *delivery.Log
	Manager  *dispatch.Manager
	Sender   notify.Sender

	store delivery.Store
	log   logger.Logger
	now   func() time.Time
}

// Option overrides a collaborator built from the configuration.
type Option func(*options)

type options struct {
	sender notify.Sender
	store  delivery.Store
	locker delivery.Locker
	sink   coremetrics.MetricsSink
	now    func() time.Time
}

// WithSender replaces the configured channel.
func WithSender(s notify.Sender) Option { return func(o *options) { o.sender = s } }

// WithStore replaces the configured delivery log backend. Locking is disabled.
func WithStore(s delivery.Store) Option {
	return func(o *options) {
		o.store = s
		o.locker = delivery.NopLocker{}
	}
}

// WithMetricsSink replaces the configured metrics sinks.
func WithMetricsSink(s coremetrics.MetricsSink) Option { return func(o *options) { o.sink = s } }

// WithClock replaces time.Now for dispatch and the menu.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	book := contacts.NewStore()
	for _, c := range cfg.ContactList() {
		if _, err := book.Add(c.Name, c.Email, c.PreferredTime); err != nil {
			return nil, fmt.Errorf("seed contact %s: %w", c.Name, err)
		}
	}

	store, locker := o.store, o.locker
	if store == nil {
		if store, locker, err = delivery.Open(cfg.Delivery, logger.New("delivery")); err != nil {
			return nil, err
		}
	}

	sender := o.sender
	if sender == nil {
		if sender, err = notify.NewSender(cfg.Channel); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("channel %s: %w", cfg.Channel.Type, err)
		}
	}

	sink := o.sink
	if sink == nil {
		if sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}

	dlog := delivery.NewLog(store)
	mgr, err := dispatch.NewManager(book, dlog, sender,
		dispatch.WithLocker(locker),
		dispatch.WithWindow(cfg.Dispatch.Window()),
		dispatch.WithMetrics(sink),
		dispatch.WithLogger(logger.New("dispatch")),
		dispatch.WithClock(o.now),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("dispatch manager: %w", err)
	}
	logg.Infof("%d contacts, %s delivery log at %s, %s channel",
		book.Len(), cfg.Delivery.Backend, cfg.Delivery.Path, sender.Name())

	return &Service{
		Config:   cfg,
		Contacts: book,
		Log:      dlog,
		Manager:  mgr,
		Sender:   sender,
		store:    store,
		log:      logg,
		now:      o.now,
	}, nil
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Handler returns the HTTP routes served by Serve.
func (s *Service) Handler() http.Handler {
	mux := metrics.NewMux()
	mux.Handle("/api/deliveries", deliveries.NewHandler(s.store, s.Config.API.Token))
	mux.Handle("/api/contacts", apicontacts.NewHandler(s.Contacts, s.Config.API.Token))
	return mux
}

// Serve exposes /metrics and the read-only API until ctx is canceled.
func (s *Service) Serve(ctx context.Context) error {
	return metrics.Serve(ctx, s.Config.API.Address, s.Handler())
}

// StartMetrics serves /metrics on the configured Prometheus port in the
// background. It is a no-op when no port is configured.
func (s *Service) StartMetrics(ctx context.Context) {
	addr := s.Config.Metrics.PrometheusPort
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Close releases the delivery log, the channel and flushes monitoring.
func (s *Service) Close() error {
	var errs []error
	if c, ok := s.Sender.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.store.Close())
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
