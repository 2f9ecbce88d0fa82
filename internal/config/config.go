// Package config loads the dispatch engine's settings surface from the
// environment (optionally backed by a .env file), mirroring the grouping the
// source exposes as ClusteringSettings / PizzaPreparationSettings /
// OpenRouteServiceSettings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"delivery-route-service/internal/domain"
)

// ChefExperience is the skill tier of a kitchen chef.
type ChefExperience string

const (
	ChefJunior ChefExperience = "junior"
	ChefMiddle ChefExperience = "middle"
	ChefSenior ChefExperience = "senior"
)

// PizzaType is the single configured pizza style baked in a given run.
type PizzaType string

const (
	PizzaRuotaDiCarroNapoletana PizzaType = "ruota_di_carro_napoletana"
	PizzaNapoletana             PizzaType = "napoletana"
	PizzaContemporanea          PizzaType = "contemporanea"
	PizzaClassica               PizzaType = "classica"
)

// ClusteringConfig groups the Time Bucketer / Geo Clusterer settings.
type ClusteringConfig struct {
	MaxPizzasPerCluster int
	TimeWindowMinutes   int
	// DistanceThreshold is expressed in whatever unit the configured Route
	// Provider metric reports (minutes if metric=duration, meters if
	// metric=distance) — see DESIGN.md Open Question #3. It is never
	// silently assumed to be kilometers.
	DistanceThreshold  float64
	ETAThresholdMinutes int
	DepotCoords        domain.Coordinates
	DepotAddress       domain.DeliveryAddress
}

// KitchenConfig groups the Readiness Estimator's settings.
type KitchenConfig struct {
	Chefs               int
	ChefExperience      ChefExperience
	ChefCapacity        map[ChefExperience]int
	BakeTimes           map[PizzaType]time.Duration
	NumOvens            int
	SingleOvenCapacity  int
	PizzaType           PizzaType
}

// RouteProviderConfig groups the Route Provider adapter's settings.
type RouteProviderConfig struct {
	APIKey  string
	Profile string
	Metric  string
	Units   string
}

// ServerConfig groups the HTTP composition root's settings.
type ServerConfig struct {
	Port string
}

// DatabaseConfig groups persistence connection settings.
type DatabaseConfig struct {
	SQLitePath  string
	PostgresURL string
}

type Config struct {
	Clustering    ClusteringConfig
	Kitchen       KitchenConfig
	RouteProvider RouteProviderConfig
	Server        ServerConfig
	Database      DatabaseConfig
}

// Load reads settings from the environment, falling back to a .env file if
// present, then applies defaults and validates required fields.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// No .env file is not fatal; environment variables may be set directly.
		_ = err
	}

	depotLon, err := getEnvFloat("DEPOT_LON", 9.19)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "DEPOT_LON", Err: err}
	}
	depotLat, err := getEnvFloat("DEPOT_LAT", 45.4642)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "DEPOT_LAT", Err: err}
	}

	distanceThreshold, err := getEnvFloat("CLUSTER_DISTANCE_THRESHOLD", 120)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "CLUSTER_DISTANCE_THRESHOLD", Err: err}
	}

	maxPizzas, err := getEnvInt("MAX_PIZZAS_PER_CLUSTER", 10)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "MAX_PIZZAS_PER_CLUSTER", Err: err}
	}
	windowMinutes, err := getEnvInt("CLUSTER_TIME_WINDOW_MINUTES", 15)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "CLUSTER_TIME_WINDOW_MINUTES", Err: err}
	}
	etaThreshold, err := getEnvInt("ETA_THRESHOLD_MINUTES", 10)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "ETA_THRESHOLD_MINUTES", Err: err}
	}

	chefs, err := getEnvInt("CHEFS", 2)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "CHEFS", Err: err}
	}
	numOvens, err := getEnvInt("NUM_OVENS", 1)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "NUM_OVENS", Err: err}
	}
	singleOvenCapacity, err := getEnvInt("SINGLE_OVEN_CAPACITY", 5)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "SINGLE_OVEN_CAPACITY", Err: err}
	}

	chefCapacity, err := getEnvJSONIntMap("CHEF_CAPACITY", map[string]int{
		"junior": 1, "middle": 3, "senior": 5,
	})
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "CHEF_CAPACITY", Err: err}
	}
	chefCapacityTyped := make(map[ChefExperience]int, len(chefCapacity))
	for k, v := range chefCapacity {
		chefCapacityTyped[ChefExperience(k)] = v
	}

	bakeTimesSeconds, err := getEnvJSONIntMap("BAKE_TIMES", map[string]int{
		"napoletana": 90,
	})
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "BAKE_TIMES", Err: err}
	}
	bakeTimesTyped := make(map[PizzaType]time.Duration, len(bakeTimesSeconds))
	for k, v := range bakeTimesSeconds {
		bakeTimesTyped[PizzaType(k)] = time.Duration(v) * time.Second
	}

	apiKey := os.Getenv("ROUTE_SERVICE_API_KEY")
	if strings.TrimSpace(apiKey) == "" {
		return nil, &domain.ConfigurationError{Field: "ROUTE_SERVICE_API_KEY", Err: fmt.Errorf("required")}
	}

	cfg := &Config{
		Clustering: ClusteringConfig{
			MaxPizzasPerCluster: maxPizzas,
			TimeWindowMinutes:   windowMinutes,
			DistanceThreshold:   distanceThreshold,
			ETAThresholdMinutes: etaThreshold,
			DepotCoords:         domain.Coordinates{Lon: depotLon, Lat: depotLat},
			DepotAddress: domain.DeliveryAddress{
				Address:    getEnv("DEPOT_ADDRESS", "Via Roma 1"),
				PostalCode: getEnv("DEPOT_POSTAL_CODE", "20100"),
				City:       getEnv("DEPOT_CITY", "Milano"),
				Country:    getEnv("DEPOT_COUNTRY", "Italy"),
			},
		},
		Kitchen: KitchenConfig{
			Chefs:              chefs,
			ChefExperience:     ChefExperience(getEnv("CHEF_EXPERIENCE", string(ChefMiddle))),
			ChefCapacity:       chefCapacityTyped,
			BakeTimes:          bakeTimesTyped,
			NumOvens:           numOvens,
			SingleOvenCapacity: singleOvenCapacity,
			PizzaType:          PizzaType(getEnv("PIZZA_TYPE", string(PizzaNapoletana))),
		},
		RouteProvider: RouteProviderConfig{
			APIKey:  apiKey,
			Profile: getEnv("ROUTE_SERVICE_PROFILE", "driving-car"),
			Metric:  getEnv("ROUTE_SERVICE_METRIC", "duration"),
			Units:   getEnv("ROUTE_SERVICE_UNITS", "m"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			SQLitePath:  getEnv("DB_PATH", "data/app.db"),
			PostgresURL: os.Getenv("DATABASE_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Clustering.MaxPizzasPerCluster <= 0 {
		return &domain.ConfigurationError{Field: "MAX_PIZZAS_PER_CLUSTER", Err: fmt.Errorf("must be positive")}
	}
	if c.Clustering.TimeWindowMinutes <= 0 {
		return &domain.ConfigurationError{Field: "CLUSTER_TIME_WINDOW_MINUTES", Err: fmt.Errorf("must be positive")}
	}
	if c.Clustering.DistanceThreshold <= 0 {
		return &domain.ConfigurationError{Field: "CLUSTER_DISTANCE_THRESHOLD", Err: fmt.Errorf("must be positive")}
	}
	if c.Kitchen.Chefs <= 0 {
		return &domain.ConfigurationError{Field: "CHEFS", Err: fmt.Errorf("must be positive")}
	}
	if _, ok := c.Kitchen.ChefCapacity[c.Kitchen.ChefExperience]; !ok {
		return &domain.ConfigurationError{Field: "CHEF_CAPACITY", Err: fmt.Errorf("no entry for experience %q", c.Kitchen.ChefExperience)}
	}
	if _, ok := c.Kitchen.BakeTimes[c.Kitchen.PizzaType]; !ok {
		return &domain.ConfigurationError{Field: "BAKE_TIMES", Err: fmt.Errorf("no entry for pizza type %q", c.Kitchen.PizzaType)}
	}
	if c.Kitchen.NumOvens <= 0 || c.Kitchen.SingleOvenCapacity <= 0 {
		return &domain.ConfigurationError{Field: "NUM_OVENS/SINGLE_OVEN_CAPACITY", Err: fmt.Errorf("must be positive")}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvJSONIntMap(key string, fallback map[string]int) (map[string]int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	var out map[string]int
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil, fmt.Errorf("parse %s as json object: %w", key, err)
	}
	return out, nil
}
