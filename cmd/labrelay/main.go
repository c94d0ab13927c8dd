// LabRelay Core - Addressable Request/Reply Messaging for Lab Automation
//
// This is the main entry point for a LabRelay node. A node hosts a registry
// of controllable objects, dispatches incoming requests against them, and
// acts as a client for requests sent to other nodes on the bus.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/bennettsmith-io/labrelay-core/migrations"

	"github.com/bennettsmith-io/labrelay-core/internal/api"
	"github.com/bennettsmith-io/labrelay-core/internal/dispatch"
	"github.com/bennettsmith-io/labrelay-core/internal/infrastructure/config"
	"github.com/bennettsmith-io/labrelay-core/internal/infrastructure/database"
	"github.com/bennettsmith-io/labrelay-core/internal/infrastructure/influxdb"
	"github.com/bennettsmith-io/labrelay-core/internal/infrastructure/logging"
	"github.com/bennettsmith-io/labrelay-core/internal/infrastructure/mqtt"
	"github.com/bennettsmith-io/labrelay-core/internal/message"
	"github.com/bennettsmith-io/labrelay-core/internal/registry"
	"github.com/bennettsmith-io/labrelay-core/internal/transport"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// queueDepthInterval is how often the transport inbox depth is sampled
// for metrics.
const queueDepthInterval = 30 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting LabRelay Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the object registry for this node
	reg := registry.New()
	reg.SetLogger(log)
	startedAt := time.Now()
	if regErr := registerSystemObject(reg, startedAt); regErr != nil {
		return fmt.Errorf("registering system object: %w", regErr)
	}
	log.Info("object registry initialised", "objects", reg.Count())

	// Set up the transport
	tr, mqttClient, err := buildTransport(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing transport")
		if closeErr := tr.Close(); closeErr != nil {
			log.Error("error closing transport", "error", closeErr)
		}
		if mqttClient != nil {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}
	}()

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Wire the dispatcher, client, and endpoint loop
	dispatcher := dispatch.NewDispatcher(reg, tr, dispatch.DispatcherConfig{
		Endpoint:      cfg.Node.Endpoint,
		Concurrent:    cfg.Dispatch.Mode == "concurrent",
		MaxConcurrent: cfg.Dispatch.MaxConcurrent,
		InvokeTimeout: time.Duration(cfg.Dispatch.InvokeTimeout) * time.Second,
	})
	dispatcher.SetLogger(log)

	client := dispatch.NewClient(tr, cfg.Node.Endpoint)
	client.SetLogger(log)

	if influxClient != nil {
		dispatcher.SetMetrics(influxClient)
		client.SetMetrics(influxClient)
		go queueDepthLoop(ctx, influxClient, tr, cfg.Node.Endpoint)
	}

	endpoint := dispatch.NewEndpoint(tr, dispatcher, client)
	endpointDone := make(chan error, 1)
	go func() {
		endpointDone <- endpoint.Run(ctx)
	}()
	log.Info("endpoint loop started",
		"endpoint", cfg.Node.Endpoint,
		"transport", cfg.Transport.Kind,
		"dispatch_mode", cfg.Dispatch.Mode,
	)

	// Persist this node's own catalog for the REST API
	catalogRepo := registry.NewSQLiteRepository(db.DB)
	if saveErr := catalogRepo.SaveCatalog(ctx, cfg.Node.Endpoint, reg.Describe()); saveErr != nil {
		return fmt.Errorf("saving local catalog: %w", saveErr)
	}

	// Announce the catalog on the bus (retained) so operator consoles can
	// discover this node without querying it.
	if mqttClient != nil {
		if pubErr := publishCatalog(mqttClient, cfg.Node.Endpoint, reg); pubErr != nil {
			log.Warn("failed to publish catalog announcement", "error", pubErr)
		}
	}

	// Start the REST API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			WS:       cfg.WebSocket,
			Logger:   log,
			Client:   client,
			Registry: reg,
			Repo:     catalogRepo,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
		log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)
	} else {
		log.Info("API server disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal or endpoint loop failure
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
	case runErr := <-endpointDone:
		if runErr != nil {
			return fmt.Errorf("endpoint loop: %w", runErr)
		}
		log.Info("endpoint loop stopped, cleaning up")
	}

	log.Info("LabRelay Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LABRELAY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LABRELAY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildTransport creates the transport named by the config. For the mqtt
// kind it also returns the shared broker client so run() can close it after
// the transport.
func buildTransport(cfg *config.Config, log *logging.Logger) (transport.Transport, *mqtt.Client, error) {
	switch cfg.Transport.Kind {
	case "memory":
		bus := transport.NewBus()
		return bus.Endpoint(cfg.Node.Endpoint), nil, nil

	case "mqtt":
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		tr, err := transport.NewMQTTTransport(mqttClient, message.JSONCodec{}, cfg.Node.Endpoint, log)
		if err != nil {
			_ = mqttClient.Close()
			return nil, nil, fmt.Errorf("creating MQTT transport: %w", err)
		}
		return tr, mqttClient, nil

	default:
		return nil, nil, fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
	}
}

// registerSystemObject adds the built-in system object every node exposes:
// ping, uptime, and describe for remote discovery.
func registerSystemObject(reg *registry.Registry, startedAt time.Time) error {
	system := registry.NewObject("system", "System").
		Method("ping", registry.Method{
			Invoke: func(ctx context.Context, call registry.Call) (any, error) {
				return "pong", nil
			},
			Doc: "liveness check",
		}).
		Method("uptime", registry.Method{
			Invoke: func(ctx context.Context, call registry.Call) (any, error) {
				return time.Since(startedAt).Seconds(), nil
			},
			Doc: "seconds since process start",
		}).
		Method("describe", registry.Method{
			Invoke: func(ctx context.Context, call registry.Call) (any, error) {
				return reg.Describe(), nil
			},
			Doc: "catalog of objects hosted on this node",
		})
	return reg.Register(system)
}

// publishCatalog announces this node's object catalog on its retained
// catalog topic.
func publishCatalog(mqttClient *mqtt.Client, endpoint string, reg *registry.Registry) error {
	payload, err := json.Marshal(reg.Describe())
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	topics := mqtt.Topics{}
	return mqttClient.Publish(topics.Catalog(endpoint), payload, 1, true)
}

// depthReporter is implemented by transports that expose their inbox depth.
type depthReporter interface {
	Depth() int
}

// queueDepthLoop periodically samples the transport inbox depth into
// InfluxDB until the context is cancelled.
func queueDepthLoop(ctx context.Context, influxClient *influxdb.Client, tr transport.Transport, endpoint string) {
	reporter, ok := tr.(depthReporter)
	if !ok {
		return
	}

	ticker := time.NewTicker(queueDepthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			influxClient.WriteQueueDepth(endpoint, reporter.Depth())
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil with the memory transport)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
