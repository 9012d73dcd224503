/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5080"

	// Retry defaults shared by the outbound clients.
	DEFAULT_MAX_RETRIES         = 3
	DEFAULT_RETRY_BASE_DELAY_MS = 500
	DEFAULT_TEAM_TIMEOUT_SECS   = 30
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"MIGRATOR_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"MIGRATOR_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"MIGRATOR_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"MIGRATOR_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"MIGRATOR_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"MIGRATOR_SERVER_PORT"`
}

// BillingConfig holds billing provider credentials and retry tuning.
type BillingConfig struct {
	StripeKey        string `json:"stripe_key" envconfig:"MIGRATOR_STRIPE_KEY"`
	MaxRetries       int    `json:"max_retries" envconfig:"MIGRATOR_BILLING_MAX_RETRIES"`
	RetryBaseDelayMs int    `json:"retry_base_delay_ms" envconfig:"MIGRATOR_BILLING_RETRY_BASE_DELAY_MS"`
}

// TeamAPIConfig holds the team-provisioning endpoint credentials. Endpoints
// optionally overrides the built-in per-region endpoint table, keyed by
// region code.
type TeamAPIConfig struct {
	Token          string            `json:"token" envconfig:"MIGRATOR_TEAM_API_TOKEN"`
	TimeoutSeconds int               `json:"timeout_seconds" envconfig:"MIGRATOR_TEAM_API_TIMEOUT_SECONDS"`
	MaxRetries     int               `json:"max_retries" envconfig:"MIGRATOR_TEAM_API_MAX_RETRIES"`
	Endpoints      map[string]string `json:"endpoints"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"MIGRATOR_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"MIGRATOR_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"MIGRATOR_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type TelemetryConfig struct {
	PostHogKey string `json:"posthog_key" envconfig:"MIGRATOR_POSTHOG_KEY"`
}

type Configuration struct {
	ProjectName  string          `json:"project_name" envconfig:"MIGRATOR_PROJECT_NAME"`
	Server       ServerConfig    `json:"server"`
	Billing      BillingConfig   `json:"billing"`
	TeamAPI      TeamAPIConfig   `json:"team_api"`
	Notification Notification    `json:"notification"`
	RateLimit    RateLimitConfig `json:"rate_limit"`
	Telemetry    TelemetryConfig `json:"telemetry"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("migrator", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called migrator.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Migration Server"
	}

	if cnf.Billing.StripeKey == "" {
		log.Println("Error: Stripe key is empty. It's a required field.")
		return errors.New("billing stripe key is required")
	}

	if cnf.TeamAPI.Token == "" {
		log.Println("Error: Team API token is empty. It's a required field.")
		return errors.New("team api token is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.Billing.StripeKey = strings.TrimSpace(cnf.Billing.StripeKey)
	cnf.TeamAPI.Token = strings.TrimSpace(cnf.TeamAPI.Token)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Billing.MaxRetries <= 0 {
		cnf.Billing.MaxRetries = DEFAULT_MAX_RETRIES
	}
	if cnf.Billing.RetryBaseDelayMs <= 0 {
		cnf.Billing.RetryBaseDelayMs = DEFAULT_RETRY_BASE_DELAY_MS
	}
	if cnf.TeamAPI.MaxRetries <= 0 {
		cnf.TeamAPI.MaxRetries = DEFAULT_MAX_RETRIES
	}
	if cnf.TeamAPI.TimeoutSeconds <= 0 {
		cnf.TeamAPI.TimeoutSeconds = DEFAULT_TEAM_TIMEOUT_SECS
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
		log.Printf("Warning: Rate limit cleanup interval not specified. Setting default value: %d seconds", defaultCleanup)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
