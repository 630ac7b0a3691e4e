package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"lighting-plan-server/electrical"
	"lighting-plan-server/models"
	"lighting-plan-server/planning"
)

type Config struct {
	Planning    PlanningConfig           `yaml:"planning"`
	Calculation models.CalculationParams `yaml:"calculation"`
	Server      ServerConfig             `yaml:"server"`
}

type PlanningConfig struct {
	SpacingM          float64 `yaml:"spacing_m"`
	LightPowerW       float64 `yaml:"light_power_w"`
	MaxLightsPerPanel int     `yaml:"max_lights_per_panel"`
	MaxPowerPerPanelW float64 `yaml:"max_power_per_panel_w"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	DBPath      string `yaml:"db_path"`
	GinMode     string `yaml:"gin_mode"`
	OverpassURL string `yaml:"overpass_url"`
}

func Default() *Config {
	return &Config{
		Planning: PlanningConfig{
			SpacingM:          30,
			LightPowerW:       42,
			MaxLightsPerPanel: planning.DefaultLimits.MaxLightsPerPanel,
			MaxPowerPerPanelW: planning.DefaultLimits.MaxPowerPerPanelW,
		},
		Calculation: models.CalculationParams{
			CableType:   "AL_PRE_2x25",
			Voltage:     230,
			PowerFactor: 0.95,
		},
		Server: ServerConfig{
			Port:   "8080",
			DBPath: "data/projects.db",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("Config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFromEnv loads .env if present, then the YAML file named by CONFIG_PATH
// (default config.yaml), then applies environment overrides.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg, err := Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) ApplyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.DBPath = getEnv("DB_PATH", c.Server.DBPath)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	c.Server.OverpassURL = getEnv("OVERPASS_URL", c.Server.OverpassURL)
	c.Planning.SpacingM = getEnvAsFloat("SPACING_M", c.Planning.SpacingM)
	c.Planning.LightPowerW = getEnvAsFloat("LIGHT_POWER_W", c.Planning.LightPowerW)
	c.Planning.MaxLightsPerPanel = getEnvAsInt("MAX_LIGHTS_PER_PANEL", c.Planning.MaxLightsPerPanel)
}

func (c *Config) Validate() error {
	if c.Planning.SpacingM <= 0 {
		return fmt.Errorf("planning.spacing_m must be positive, got %v", c.Planning.SpacingM)
	}
	if c.Planning.LightPowerW <= 0 {
		return fmt.Errorf("planning.light_power_w must be positive, got %v", c.Planning.LightPowerW)
	}
	if _, err := electrical.LookupCable(c.Calculation.CableType); err != nil {
		return fmt.Errorf("calculation.cable_type: %w", err)
	}
	return nil
}

func (c *Config) Limits() planning.Limits {
	return planning.Limits{
		MaxLightsPerPanel: c.Planning.MaxLightsPerPanel,
		MaxPowerPerPanelW: c.Planning.MaxPowerPerPanelW,
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
