package lantern

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/indigo-web/lantern/config"
	"github.com/indigo-web/lantern/internal/address"
	"github.com/indigo-web/lantern/internal/http1"
	"github.com/indigo-web/lantern/internal/loop"
	"github.com/indigo-web/lantern/internal/transport"
	"github.com/indigo-web/lantern/metrics"
	"github.com/indigo-web/lantern/router"
	"github.com/indigo-web/lantern/router/inbuilt"
	"golang.org/x/sync/errgroup"
)

var ErrStopped = errors.New("application is already stopped")

type listener struct {
	addr      string
	transport func() (transport.Transport, error)
}

type hooks struct {
	OnBind          func(addrs []net.Addr)
	OnStart, OnStop func()
}

// App is the entry point of a server. It binds the listeners, runs the event loop serving
// handlers and the periodic housekeeping timer, and tears everything down on Stop.
type App struct {
	addr         string
	cfg          *config.Config
	logger       hclog.Logger
	metrics      *metrics.Registry
	hooks        hooks
	listeners    []listener
	housekeeping []func(error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// New returns a new App instance. The address is used for plain HTTP, an address consisting of
// the port only (e.g. :8080) is bound to all interfaces. Empty address disables plain HTTP.
func New(addr string) *App {
	return &App{
		addr:    addr,
		cfg:     config.Default(),
		metrics: metrics.New(),
	}
}

// Tune replaces default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the logger built from the config.
func (a *App) Logger(logger hclog.Logger) *App {
	a.logger = logger
	return a
}

// Metrics returns the registry all the server's metrics are collected into.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// OnBind calls the callback once all the listeners are bound, with their actual addresses
// in the order they were added. The plain HTTP listener, if any, is the first one.
func (a *App) OnBind(cb func(addrs []net.Addr)) *App {
	a.hooks.OnBind = cb
	return a
}

// OnStart calls the callback at the moment, when the event loop and all the listeners
// are started.
func (a *App) OnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// OnStop calls the callback at the moment, when all the listeners are down and every
// connection is closed.
func (a *App) OnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Housekeeping adds a callback invoked on the event loop on every housekeeping timer firing.
// Once the timer is stopped, the callback receives loop.ErrTimerStopped.
func (a *App) Housekeeping(fn func(error)) *App {
	a.housekeeping = append(a.housekeeping, fn)
	return a
}

// TLS adds an encrypted listener with a custom TLS config.
func (a *App) TLS(addr string, cfg *tls.Config) *App {
	a.listeners = append(a.listeners, listener{
		addr: address.Normalize(addr),
		transport: func() (transport.Transport, error) {
			return transport.NewTLS(cfg), nil
		},
	})

	return a
}

// HTTPS adds an encrypted listener using the certificate and key files.
func (a *App) HTTPS(addr, cert, key string) *App {
	a.listeners = append(a.listeners, listener{
		addr: address.Normalize(addr),
		transport: func() (transport.Transport, error) {
			cfg, err := keyPairConfig(cert, key)
			if err != nil {
				return nil, err
			}

			return transport.NewTLS(cfg), nil
		},
	})

	return a
}

// AutoHTTPS adds an encrypted listener with certificates obtained via ACME. Local addresses
// get a self-signed certificate instead, generated once and cached afterwards.
func (a *App) AutoHTTPS(addr string, domains ...string) *App {
	if address.IsLocalhost(addr) {
		cert, key, err := selfSignedCert()
		if err != nil {
			a.log().Warn("auto HTTPS: can't generate self-signed certificate, disabling TLS", "error", err)
			return a
		}

		return a.HTTPS(addr, cert, key)
	}

	return a.TLS(addr, autocertConfig(a.log(), domains...))
}

// Serve starts the web-application and blocks until it's stopped or a listener fails. If nil
// is passed instead of a router, empty inbuilt will be used.
func (a *App) Serve(r router.Router) error {
	if r == nil {
		r = inbuilt.New()
	}

	if err := r.OnStart(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !a.setCancel(cancel) {
		return ErrStopped
	}

	logger := a.log()
	events := loop.New(a.cfg.Loop.Workers, logger.Named("loop"))
	server := http1.NewServer(a.cfg, r, events, logger.Named("transport"), a.metrics)

	supervisor, err := a.bind(server)
	if err != nil {
		return err
	}

	logger.Info("listening", "addrs", fmt.Sprint(supervisor.Addrs()))
	if a.hooks.OnBind != nil {
		a.hooks.OnBind(supervisor.Addrs())
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	timer := loop.NewTimer(events, a.cfg.Loop.Housekeeping, a.housekeep(logger.Named("housekeeping"), events))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// connections in progress still need the loop, so stop it only afterwards
		defer stopLoop()
		err := supervisor.Run(gctx, a.cfg.NET)
		timer.Stop()

		return err
	})
	g.Go(func() error {
		return events.Run(loopCtx)
	})

	timer.Start()
	callIfNotNil(a.hooks.OnStart)
	err = g.Wait()
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Stop shuts the application down. The listeners are closed immediately, while requests in
// progress are allowed to complete. Serve returns once everything is done.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) setCancel(cancel context.CancelFunc) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return false
	}

	a.cancel = cancel
	return true
}

func (a *App) bind(server *http1.Server) (*transport.Supervisor, error) {
	supervisor := transport.NewSupervisor()

	if len(a.addr) > 0 {
		if err := supervisor.Add(address.Normalize(a.addr), transport.NewTCP(), server.HandleConn); err != nil {
			return nil, fmt.Errorf("bind %s: %w", a.addr, err)
		}
	}

	for _, l := range a.listeners {
		t, err := l.transport()
		if err != nil {
			supervisor.Close()
			return nil, fmt.Errorf("listener %s: %w", l.addr, err)
		}

		if err = supervisor.Add(l.addr, t, server.HandleConn); err != nil {
			return nil, fmt.Errorf("bind %s: %w", l.addr, err)
		}
	}

	return supervisor, nil
}

func (a *App) housekeep(logger hclog.Logger, events *loop.Loop) func(error) {
	return func(err error) {
		if err != nil {
			logger.Debug("timer stopped", "reason", err)
		} else {
			logger.Trace("timer fired", "backlog", events.Len())
			a.metrics.Housekeeping(events.Len())
		}

		for _, fn := range a.housekeeping {
			fn(err)
		}
	}
}

func (a *App) log() hclog.Logger {
	if a.logger == nil {
		a.logger = hclog.New(&hclog.LoggerOptions{
			Name:       "lantern",
			Level:      hclog.LevelFromString(a.cfg.Log.Level),
			JSONFormat: a.cfg.Log.JSON,
			Output:     os.Stderr,
		})
	}

	return a.logger
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
