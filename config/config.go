package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Generation configuration for route synthesis
	Generation *GenerationConfig `json:"generation" yaml:"generation"`

	// Safety configuration for crime/news scoring
	Safety *SafetyConfig `json:"safety" yaml:"safety"`

	// Maps configuration for the routing/geocoding provider
	Maps *MapsConfig `json:"maps" yaml:"maps"`

	// CrimeData configuration for the incident-record provider
	CrimeData *CrimeDataConfig `json:"crimeData" yaml:"crimeData"`

	// News configuration for the news-search provider
	News *NewsConfig `json:"news" yaml:"news"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// GenerationConfig defines route generation parameters
type GenerationConfig struct {
	// Default fractional distance tolerance for accepting a candidate route
	DistanceTolerance float64 `json:"distanceTolerance" yaml:"distanceTolerance"`

	// Default similarity threshold above which a candidate is rejected
	SimilarityThreshold float64 `json:"similarityThreshold" yaml:"similarityThreshold"`

	// Maximum routing attempts per candidate slot
	MaxAttemptsPerSlot int `json:"maxAttemptsPerSlot" yaml:"maxAttemptsPerSlot"`

	// Maximum concurrent candidate searches (respects provider rate limits)
	MaxConcurrentSlots int `json:"maxConcurrentSlots" yaml:"maxConcurrentSlots"`
}

// SafetyConfig defines safety scoring parameters
type SafetyConfig struct {
	// Trailing window in days for crime incident queries
	CrimeWindowDays int `json:"crimeWindowDays" yaml:"crimeWindowDays"`

	// Trailing window in days for news article queries
	NewsWindowDays int `json:"newsWindowDays" yaml:"newsWindowDays"`

	// Radius in kilometers around route points for the incident bounding box
	SearchRadiusKm float64 `json:"searchRadiusKm" yaml:"searchRadiusKm"`
}

// MapsConfig defines the routing/geocoding provider endpoint
type MapsConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
	APIKey  string        `json:"apiKey" yaml:"apiKey"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// CrimeDataConfig defines the crime-record provider endpoint
type CrimeDataConfig struct {
	BaseURL  string        `json:"baseUrl" yaml:"baseUrl"`
	AppToken string        `json:"appToken" yaml:"appToken"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// NewsConfig defines the news-search provider endpoint
type NewsConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
	APIKey  string        `json:"apiKey" yaml:"apiKey"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: MAPS_APIKEY -> maps.apiKey (not maps.apikey)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Generation == nil {
		c.Generation = &GenerationConfig{}
	}
	if c.Generation.DistanceTolerance <= 0 {
		c.Generation.DistanceTolerance = 0.3
	}
	if c.Generation.SimilarityThreshold <= 0 {
		c.Generation.SimilarityThreshold = 0.3
	}
	if c.Generation.MaxAttemptsPerSlot <= 0 {
		c.Generation.MaxAttemptsPerSlot = 8
	}
	if c.Generation.MaxConcurrentSlots <= 0 {
		c.Generation.MaxConcurrentSlots = 3
	}

	if c.Safety == nil {
		c.Safety = &SafetyConfig{}
	}
	if c.Safety.CrimeWindowDays <= 0 {
		c.Safety.CrimeWindowDays = 7
	}
	if c.Safety.NewsWindowDays <= 0 {
		c.Safety.NewsWindowDays = 14
	}
	if c.Safety.SearchRadiusKm <= 0 {
		c.Safety.SearchRadiusKm = 0.5
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
