// Package app wires the store, the controllers and the web server together
// and owns their lifetime.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/chart"
	"github.com/ISim/Arduino/smarthome/command"
	"github.com/ISim/Arduino/smarthome/config"
	"github.com/ISim/Arduino/smarthome/dashboard"
	"github.com/ISim/Arduino/smarthome/firestore"
	"github.com/ISim/Arduino/smarthome/home"
	"github.com/ISim/Arduino/smarthome/metrics"
	"github.com/ISim/Arduino/smarthome/pubsub"
	"github.com/ISim/Arduino/smarthome/server"
	"github.com/ISim/Arduino/smarthome/view"
)

// App is the running dashboard.
type App struct {
	cfg *config.Config

	sensorStore   *firestore.Client
	actuatorStore *firestore.Client

	dispatcher *command.Dispatcher
	sensors    []*dashboard.SensorController
	actuators  *dashboard.ActuatorController
	server     *server.Server

	subscriptions []*firestore.Subscription
	wg            sync.WaitGroup
	serverErr     error
}

// New connects to Firestore and builds the controllers. Each controller gets
// its own store client.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheusCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics registration failed: %w", err)
	}

	a.sensorStore, err = a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.actuatorStore, err = a.openStore(ctx)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	doc := view.NewDashboardDocument()
	bindings, err := view.Bind(doc)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	notifier, err := a.notifier()
	if err != nil {
		a.closeStores()
		return nil, err
	}

	labels := map[home.SensorKind]*view.Element{
		home.Temperature: bindings.RealTemp,
		home.Humidity:    bindings.RealHumid,
	}
	canvases := map[home.SensorKind]*view.Element{
		home.Temperature: bindings.TemperatureGraph,
		home.Humidity:    bindings.HumidityGraph,
	}
	for _, kind := range home.SensorKinds {
		var alert *dashboard.Threshold
		if th, ok := cfg.Alerts.Thresholds[kind.String()]; ok && notifier != nil {
			alert = dashboard.NewThreshold(kind, th.Max, notifier)
		}
		c := chart.New(canvases[kind].ID(), kind.AxisLabel(), kind.Title())
		a.sensors = append(a.sensors, dashboard.NewSensorController(kind, c, labels[kind], alert, collector))
	}

	a.dispatcher = command.New(cfg.Control.Timeout.Duration(), collector)
	a.actuators = dashboard.NewActuatorController(bindings, a.dispatcher, cfg.Control.BaseURL, collector)
	a.server = server.New(doc, a.sensors, a.actuators, reg, cfg.HTTP.CORSOrigins)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (*firestore.Client, error) {
	c, err := firestore.New(ctx, a.cfg.Firebase.ProjectID, a.cfg.Firebase.CredentialsFile)
	if err != nil {
		return nil, err
	}
	c.SetRetryInterval(a.cfg.Firebase.RetryInterval.Duration())
	return c, nil
}

func (a *App) notifier() (dashboard.Notifier, error) {
	if !a.cfg.Alerts.Enabled {
		return nil, nil
	}
	pub, err := pubsub.NewPublisher(a.cfg.Firebase.ProjectID, a.cfg.Alerts.Topic)
	if err != nil {
		return nil, err
	}
	return &dashboard.ChatNotifier{Chats: a.sensorStore, Publisher: pub}, nil
}

// Start opens the subscriptions and the web server.
func (a *App) Start(ctx context.Context) error {
	for _, s := range a.sensors {
		a.subscriptions = append(a.subscriptions, a.sensorStore.WatchSensor(ctx, s.Kind(), s.HandleSnapshot))
	}
	a.subscriptions = append(a.subscriptions, a.actuatorStore.WatchActuators(ctx, a.actuators.HandleSnapshot))
	for _, s := range a.subscriptions {
		log.Debug().Str("subscription", s.ID()).Str("path", s.Path()).Msg("Listening")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.HTTP.Host, a.cfg.HTTP.Port)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Run(ctx, addr, a.cfg.ShutdownTimeout.Duration()); err != nil {
			log.Error().Err(err).Msg("Dashboard server error")
			a.serverErr = err
		}
	}()

	log.Info().Int("subscriptions", len(a.subscriptions)).Str("control", a.cfg.Control.BaseURL).Msg("Dashboard started")
	return nil
}

// Wait blocks until the web server has stopped.
func (a *App) Wait() error {
	a.wg.Wait()
	return a.serverErr
}

// Stop unsubscribes, waits for in-flight commands and closes the stores.
func (a *App) Stop() error {
	for _, s := range a.subscriptions {
		s.Stop()
	}
	a.subscriptions = nil

	a.dispatcher.Wait()

	err := a.closeStores()
	log.Info().Msg("Dashboard stopped")
	return err
}

// closeStores closes whichever store clients are open.
func (a *App) closeStores() error {
	var stores []io.Closer
	for _, c := range []*firestore.Client{a.sensorStore, a.actuatorStore} {
		if c != nil {
			stores = append(stores, c)
		}
	}
	return closeAll(stores...)
}

func closeAll(closers ...io.Closer) error {
	var firstErr error
	for _, c := range closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()
	return ctx
}
