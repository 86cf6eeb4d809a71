package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host         string
		Port         int
		User         string
		Password     string
		Exchange     string
		RoutingKey   string
		Queue        string
		DLExchange   string
		DLRoutingKey string
		DLQueue      string
	}
	HTTP struct {
		Port          int
		MaxConcurrent int
	}
	Availability struct {
		CacheTTLSeconds int
	}
	Publisher struct {
		ConfirmTimeoutSeconds int
		MaxInFlight           int
	}
}

// Load resolves the config path (CONFIG_PATH, after a best-effort .env load)
// and reads it. Falls back to config/config.yaml.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	return LoadFromFile(path)
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}
	if cfg.RabbitMQ.Exchange == "" {
		cfg.RabbitMQ.Exchange = "bookings_direct"
	}
	if cfg.RabbitMQ.RoutingKey == "" {
		cfg.RabbitMQ.RoutingKey = "booking.created"
	}
	if cfg.RabbitMQ.Queue == "" {
		cfg.RabbitMQ.Queue = "bookings_queue"
	}
	if cfg.RabbitMQ.DLExchange == "" {
		cfg.RabbitMQ.DLExchange = cfg.RabbitMQ.Exchange + "_dlx"
	}
	if cfg.RabbitMQ.DLRoutingKey == "" {
		cfg.RabbitMQ.DLRoutingKey = cfg.RabbitMQ.RoutingKey + ".dead"
	}
	if cfg.RabbitMQ.DLQueue == "" {
		cfg.RabbitMQ.DLQueue = cfg.RabbitMQ.Queue + "_dlq"
	}

	// HTTP
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3000
	}
	if cfg.HTTP.MaxConcurrent == 0 {
		cfg.HTTP.MaxConcurrent = 50
	}

	// Availability
	if cfg.Availability.CacheTTLSeconds == 0 {
		cfg.Availability.CacheTTLSeconds = 30
	}

	// Publisher
	if cfg.Publisher.ConfirmTimeoutSeconds == 0 {
		cfg.Publisher.ConfirmTimeoutSeconds = 5
	}
	if cfg.Publisher.MaxInFlight == 0 {
		cfg.Publisher.MaxInFlight = 250
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	// DB
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "database.port must be in 1..65535")
	}
	if c.Database.User == "" {
		problems = append(problems, "database.user is required")
	}
	if c.Database.Password == "" {
		problems = append(problems, "database.password is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.database (name) is required")
	}

	// RabbitMQ
	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}
	if c.RabbitMQ.User == "" {
		problems = append(problems, "rabbitmq.user is required")
	}
	if c.RabbitMQ.Password == "" {
		problems = append(problems, "rabbitmq.password is required")
	}

	// HTTP
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		problems = append(problems, "http.port must be in 1..65535")
	}
	if c.HTTP.MaxConcurrent < 0 {
		problems = append(problems, "http.max_concurrent must be >= 0")
	}

	// Publisher
	if c.Publisher.ConfirmTimeoutSeconds < 1 {
		problems = append(problems, "publisher.confirm_timeout_seconds must be >= 1")
	}
	if c.Publisher.MaxInFlight < 1 {
		problems = append(problems, "publisher.max_in_flight must be >= 1")
	}

	if c.Availability.CacheTTLSeconds < 0 {
		problems = append(problems, "availability.cache_ttl_seconds must be >= 0")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// parseYAML parses the specific two-level mapping used by config.yaml.
func parseYAML(r io.Reader, cfg *Config) error {
	type section int
	const (
		none section = iota
		db
		rm
		httpSec
		avail
		pub
	)

	scanner := bufio.NewScanner(r)
	var cur section

	lineNo := 0
	seenTop := map[section]bool{}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		// Strip comments
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}

		line := strings.TrimRight(raw, " \t\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Top-level section? (no leading spaces)
		if len(line) > 0 && (line[0] != ' ' && line[0] != '\t') {
			var next section
			switch strings.TrimSpace(line) {
			case "database:":
				next = db
			case "rabbitmq:":
				next = rm
			case "http:":
				next = httpSec
			case "availability:":
				next = avail
			case "publisher:":
				next = pub
			default:
				return fmt.Errorf("line %d: unknown top-level key %q", lineNo, strings.TrimSuffix(strings.TrimSpace(line), ":"))
			}
			if seenTop[next] {
				return fmt.Errorf("line %d: duplicate %q section", lineNo, strings.TrimSuffix(strings.TrimSpace(line), ":"))
			}
			seenTop[next] = true
			cur = next
			continue
		}

		// Expect indented "key: value"
		if cur == none {
			return fmt.Errorf("line %d: key without a section", lineNo)
		}
		trim := strings.TrimSpace(line)
		colon := strings.IndexByte(trim, ':')
		if colon <= 0 {
			return fmt.Errorf("line %d: expected 'key: value'", lineNo)
		}
		key := strings.TrimSpace(trim[:colon])
		val := strings.TrimSpace(trim[colon+1:])

		intVal := func() (int, error) {
			p, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("line %d: %s must be int: %v", lineNo, key, err)
			}
			return p, nil
		}

		var err error
		switch cur {
		case db:
			switch key {
			case "host":
				cfg.Database.Host = val
			case "port":
				cfg.Database.Port, err = intVal()
			case "user":
				cfg.Database.User = val
			case "password":
				cfg.Database.Password = val
			case "database":
				cfg.Database.Name = val
			default:
				return fmt.Errorf("line %d: unknown key in database: %q", lineNo, key)
			}
		case rm:
			switch key {
			case "host":
				cfg.RabbitMQ.Host = val
			case "port":
				cfg.RabbitMQ.Port, err = intVal()
			case "user":
				cfg.RabbitMQ.User = val
			case "password":
				cfg.RabbitMQ.Password = val
			case "exchange":
				cfg.RabbitMQ.Exchange = val
			case "routing_key":
				cfg.RabbitMQ.RoutingKey = val
			case "queue":
				cfg.RabbitMQ.Queue = val
			case "dl_exchange":
				cfg.RabbitMQ.DLExchange = val
			case "dl_routing_key":
				cfg.RabbitMQ.DLRoutingKey = val
			case "dl_queue":
				cfg.RabbitMQ.DLQueue = val
			default:
				return fmt.Errorf("line %d: unknown key in rabbitmq: %q", lineNo, key)
			}
		case httpSec:
			switch key {
			case "port":
				cfg.HTTP.Port, err = intVal()
			case "max_concurrent":
				cfg.HTTP.MaxConcurrent, err = intVal()
			default:
				return fmt.Errorf("line %d: unknown key in http: %q", lineNo, key)
			}
		case avail:
			switch key {
			case "cache_ttl_seconds":
				cfg.Availability.CacheTTLSeconds, err = intVal()
			default:
				return fmt.Errorf("line %d: unknown key in availability: %q", lineNo, key)
			}
		case pub:
			switch key {
			case "confirm_timeout_seconds":
				cfg.Publisher.ConfirmTimeoutSeconds, err = intVal()
			case "max_in_flight":
				cfg.Publisher.MaxInFlight, err = intVal()
			default:
				return fmt.Errorf("line %d: unknown key in publisher: %q", lineNo, key)
			}
		}
		if err != nil {
			return err
		}
	}

	return scanner.Err()
}
