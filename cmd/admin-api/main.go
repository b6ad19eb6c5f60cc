package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/TaxiPark/TaxiPark/internal/car"
	"github.com/TaxiPark/TaxiPark/internal/common/config"
	"github.com/TaxiPark/TaxiPark/internal/common/db"
	"github.com/TaxiPark/TaxiPark/internal/common/logger"
	"github.com/TaxiPark/TaxiPark/internal/common/server"
	"github.com/TaxiPark/TaxiPark/internal/common/tracing"
	"github.com/TaxiPark/TaxiPark/internal/driver"
	"github.com/TaxiPark/TaxiPark/internal/model"
	"github.com/TaxiPark/TaxiPark/internal/seed"
	"gorm.io/gorm"
)

var (
	configPath = flag.String("config", "configs/admin-api.json", "config file path")
	consulKV   = flag.String("consul-kv", "", "Consul KV key holding the JSON config (overrides -config)")
	consulHost = flag.String("consul-host", "localhost", "Consul agent host for -consul-kv")
	consulPort = flag.Int("consul-port", 8500, "Consul agent port for -consul-kv")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error
	if *consulKV != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulKV)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// InitTracer installs the tracer globally; only the closer matters here.
	_, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	var gormDB *gorm.DB
	switch cfg.Database.Driver {
	case "sqlite":
		gormDB, err = db.NewSQLite(cfg.Database.Database)
	default:
		gormDB, err = db.NewMySQL(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Database,
			cfg.Database.MaxIdle,
			cfg.Database.MaxOpen,
		)
	}
	if err != nil {
		log.Fatalf("failed to init database: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.Car{}, &model.Driver{}); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	if cfg.Seed.Enabled {
		if err := seed.Run(gormDB); err != nil {
			log.Fatalf("failed to seed database: %v", err)
		}
	}

	mux := http.NewServeMux()
	car.NewHandler(gormDB, log).Register(mux)
	driver.NewHandler(gormDB, log).Register(mux)

	if err := server.RunHTTPServer(cfg, log, mux); err != nil {
		log.Fatalf("admin-api exited with error: %v", err)
	}
}
