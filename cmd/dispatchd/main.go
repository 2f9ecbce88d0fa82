package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"delivery-route-service/internal/adapters/cache"
	"delivery-route-service/internal/adapters/routeprovider"
	"delivery-route-service/internal/adapters/storage"
	"delivery-route-service/internal/api"
	"delivery-route-service/internal/config"
	"delivery-route-service/internal/dispatch"
	"delivery-route-service/internal/platform/db"
	"delivery-route-service/internal/ports"
)

// main is the application composition root. It wires concrete adapters
// (Postgres or SQLite, ORS, ristretto-fronted caches) behind ports and
// starts the HTTP server exposing the Dispatcher.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, usingPostgres, err := openDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initSchema(conn, usingPostgres); err != nil {
		log.Fatal(err)
	}

	orderRepo, driverRepo, clusterRepo := buildRepositories(conn, usingPostgres)

	provider, err := buildRouteProvider(conn, usingPostgres, cfg)
	if err != nil {
		log.Fatal(err)
	}

	dispatcher := dispatch.NewDispatcher(orderRepo, driverRepo, clusterRepo, provider, cfg)
	router := api.NewRouter(dispatcher)

	log.Printf("Server listening addr=:%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openDatabase opens Postgres when DATABASE_URL is configured, SQLite
// otherwise, mirroring the dual-backend split the storage and cache
// adapters are already built for.
func openDatabase(cfg *config.Config) (*sql.DB, bool, error) {
	if strings.TrimSpace(cfg.Database.PostgresURL) != "" {
		conn, err := db.Open(cfg.Database.PostgresURL)
		return conn, true, err
	}

	conn, err := sql.Open("sqlite", cfg.Database.SQLitePath)
	if err != nil {
		return nil, false, fmt.Errorf("open sqlite database %q: %w", cfg.Database.SQLitePath, err)
	}
	if err := conn.Ping(); err != nil {
		return nil, false, fmt.Errorf("verify sqlite connection to %q: %w", cfg.Database.SQLitePath, err)
	}
	return conn, false, nil
}

func initSchema(conn *sql.DB, usingPostgres bool) error {
	if usingPostgres {
		return storage.InitSchemaPostgres(conn)
	}
	return storage.InitSchemaSQLite(conn)
}

func buildRepositories(conn *sql.DB, usingPostgres bool) (ports.OrderRepository, ports.DriverRepository, ports.ClusterRepository) {
	if usingPostgres {
		return storage.NewPostgresOrderRepository(conn),
			storage.NewPostgresDriverRepository(conn),
			storage.NewPostgresClusterRepository(conn)
	}
	return storage.NewSqliteOrderRepository(conn),
		storage.NewSqliteDriverRepository(conn),
		storage.NewSqliteClusterRepository(conn)
}

// buildRouteProvider wires the ORS client with a ristretto L1 cache in
// front of the SQL-backed L2 cache, for both the geocode and matrix lookups.
func buildRouteProvider(conn *sql.DB, usingPostgres bool, cfg *config.Config) (*routeprovider.ORSRouteProvider, error) {
	var (
		matrixL2  cache.MatrixCache
		geocodeL2 cache.GeocodeCache
	)
	if usingPostgres {
		matrixL2 = cache.NewSQLMatrixCache(conn)
		geocodeL2 = cache.NewSQLGeocodeCache(conn)
	} else {
		matrixL2 = cache.NewSqliteMatrixCache(conn)
		geocodeL2 = cache.NewSqliteGeocodeCache(conn)
	}

	matrixCache, err := cache.NewRistrettoMatrixCache(matrixL2)
	if err != nil {
		return nil, fmt.Errorf("build matrix cache: %w", err)
	}
	geocodeCache, err := cache.NewRistrettoGeocodeCache(geocodeL2)
	if err != nil {
		return nil, fmt.Errorf("build geocode cache: %w", err)
	}

	metric := ports.MetricDuration
	if cfg.RouteProvider.Metric == string(ports.MetricDistance) {
		metric = ports.MetricDistance
	}

	return routeprovider.NewORSRouteProvider(
		cfg.RouteProvider.APIKey,
		cfg.RouteProvider.Profile,
		metric,
		matrixCache,
		geocodeCache,
	)
}
