package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	BBox     BBoxConfig     `yaml:"bbox" mapstructure:"bbox"`
	Grid     GridConfig     `yaml:"grid" mapstructure:"grid"`
	OSRM     OSRMConfig     `yaml:"osrm" mapstructure:"osrm"`
	Routes   RoutesConfig   `yaml:"routes" mapstructure:"routes"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// BoundaryConfig configures the boundary data source. URL is the remote
// feature service; File and Shapefile select local alternatives when set.
type BoundaryConfig struct {
	URL        string `yaml:"url" mapstructure:"url"`
	File       string `yaml:"file" mapstructure:"file"`
	Shapefile  string `yaml:"shapefile" mapstructure:"shapefile"`
	LabelField string `yaml:"label_field" mapstructure:"label_field"`
}

// BBoxConfig is the planning bounding box in lon/lat.
type BBoxConfig struct {
	MinLon float64 `yaml:"min_lon" mapstructure:"min_lon"`
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLon float64 `yaml:"max_lon" mapstructure:"max_lon"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
}

// GridConfig configures the site sampling lattice.
type GridConfig struct {
	Cols int    `yaml:"cols" mapstructure:"cols"`
	Rows int    `yaml:"rows" mapstructure:"rows"`
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
}

// OSRMConfig configures the routing backend client.
type OSRMConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// RoutesConfig configures the target-duration route searches.
type RoutesConfig struct {
	Count         int     `yaml:"count" mapstructure:"count"`
	TargetMinutes float64 `yaml:"target_minutes" mapstructure:"target_minutes"`
	MaxAttempts   int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance"`
	GrowthFactor  float64 `yaml:"growth_factor" mapstructure:"growth_factor"`
	BaseRadiusDeg float64 `yaml:"base_radius_deg" mapstructure:"base_radius_deg"`
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ESB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. The bbox and grid defaults cover NYC at the density the
	// demo dashboard expects.
	v.SetDefault("boundary.label_field", "NAME")
	v.SetDefault("bbox.min_lon", -74.25559)
	v.SetDefault("bbox.min_lat", 40.49612)
	v.SetDefault("bbox.max_lon", -73.70001)
	v.SetDefault("bbox.max_lat", 40.91553)
	v.SetDefault("grid.cols", 18)
	v.SetDefault("grid.rows", 12)
	v.SetDefault("grid.seed", 42)
	v.SetDefault("osrm.base_url", "https://router.project-osrm.org/route/v1/driving")
	v.SetDefault("osrm.timeout_secs", 12)
	v.SetDefault("osrm.rate_limit_rps", 5)
	v.SetDefault("routes.count", 5)
	v.SetDefault("routes.target_minutes", 90)
	v.SetDefault("routes.max_attempts", 7)
	v.SetDefault("routes.tolerance", 0.1)
	v.SetDefault("routes.growth_factor", 1.4)
	v.SetDefault("routes.max_concurrent", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
