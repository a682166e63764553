// Command agitatord runs the agitation motor control daemon: it loads
// configuration, brings up the motor driver, the scheduler's tick loop, the
// audit log, optional MQTT telemetry, and the HTTP/WebSocket control API.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/darkroom/agitator/internal/api"
	apimw "github.com/darkroom/agitator/internal/api/middleware"
	"github.com/darkroom/agitator/internal/config"
	"github.com/darkroom/agitator/internal/health"
	"github.com/darkroom/agitator/internal/interpreter"
	"github.com/darkroom/agitator/internal/logger"
	"github.com/darkroom/agitator/internal/metrics"
	"github.com/darkroom/agitator/internal/recipebook"
	"github.com/darkroom/agitator/internal/runlog"
	"github.com/darkroom/agitator/internal/runtime"
	"github.com/darkroom/agitator/internal/scheduler"
	"github.com/darkroom/agitator/internal/telemetry"
)

var Version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		LogDir:     cfg.Logger.LogDir,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
		Compress:   cfg.Logger.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("agitatord starting", zap.String("version", Version))

	driver := initMotor(cfg.Motor)

	store, err := runlog.Open(cfg.RunLog.Path)
	if err != nil {
		logger.Fatal("failed to open run log", zap.Error(err))
	}
	defer store.Close()

	publisher, err := telemetry.NewPublisher(telemetry.Config{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		DeviceID: cfg.MQTT.DeviceID,
	})
	if err != nil {
		logger.Error("failed to start telemetry publisher, continuing without it", zap.Error(err))
		publisher = nil
	}
	if publisher != nil {
		defer publisher.Close()
	}

	m := metrics.New()
	healthChecker := health.NewChecker()

	lastTick := time.Now()
	healthChecker.Register("scheduler", health.SchedulerLivenessCheck(func() time.Time { return lastTick }, 10*time.Second))
	if faulter, ok := driver.(interface{ LastError() error }); ok {
		healthChecker.Register("motor", health.MotorFaultCheck(faulter.LastError))
	}

	var server *api.Server
	var controller *runtime.Controller

	// The observer runs inside Controller.Tick, which holds the controller's
	// mutex, so it must not call back into the controller: startRun records
	// the run ID here instead.
	var currentRunID atomic.Value
	prevResult := interpreter.Active
	prevFaulted := false

	observer := func(snap interpreter.Snapshot) {
		lastTick = time.Now()
		m.IncrementTicks()

		if server != nil {
			server.BroadcastSnapshot(snap)
		}
		if publisher != nil {
			publisher.Publish(snap)
		}

		detail := snap.AwaitingMessage
		if snap.Fault != nil {
			detail = snap.Fault.Error()
		}
		runID := snap.ProcessName
		if id, ok := currentRunID.Load().(string); ok && id != "" {
			runID = id
		}
		if err := store.Append(runlog.Event{
			RunID:       runID,
			ProcessName: snap.ProcessName,
			StepIndex:   snap.StepIndex,
			StepName:    snap.StepName,
			Kind:        snap.Result.String(),
			Detail:      detail,
			OccurredAt:  time.Now(),
		}); err != nil {
			logger.Warn("failed to append run log event", zap.Error(err))
		}

		// Done and a latched fault repeat on every later tick; count each
		// only on the tick it first appears.
		faulted := snap.Fault != nil
		if faulted && !prevFaulted {
			m.IncrementRunsFaulted()
		}
		if snap.Result == interpreter.Done && prevResult != interpreter.Done {
			m.IncrementRunsCompleted()
		}
		prevFaulted = faulted
		prevResult = snap.Result
	}

	controller = runtime.New(driver, observer)

	startRun := func(name string) error {
		factory, err := recipebook.Lookup(name)
		if err != nil {
			return err
		}
		controller.StartRun(factory())
		currentRunID.Store(controller.CurrentRunID())
		m.IncrementRunsStarted()
		return nil
	}

	tickInterval := time.Duration(cfg.Scheduler.TickIntervalSeconds) * time.Second
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	sched := scheduler.New(controller, tickInterval)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	server = api.New(api.Deps{
		Scheduler: sched,
		Snapshot:  controller.Snapshot,
		StartRun:  startRun,
		Health:    healthChecker,
		Metrics:   m,
		RunLog:    store,
		JWT: apimw.JWTConfig{
			SecretKey:  cfg.Auth.Secret,
			Expiration: time.Duration(cfg.Auth.TokenTTLMin) * time.Minute,
			Issuer:     "agitatord",
		},
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("api server listening", zap.String("addr", addr))
		if err := server.Listen(addr); err != nil {
			logger.Error("api server stopped", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("agitatord shutting down")
	if err := server.Shutdown(); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
	}
}
