package common

import (
	"bytes"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration of one conformance run.
type Config struct {
	LogLevel          string              `yaml:"logLevel" json:"logLevel"`
	Fixtures          []string            `yaml:"fixtures" json:"fixtures"`
	Networks          []string            `yaml:"networks,omitempty" json:"networks"`
	PendingNetwork    string              `yaml:"pendingNetwork,omitempty" json:"pendingNetwork"`
	Throttle          *Duration           `yaml:"throttle,omitempty" json:"throttle"`
	ExcludedProviders []string            `yaml:"excludedProviders,omitempty" json:"excludedProviders"`
	Checks            *ChecksConfig       `yaml:"checks,omitempty" json:"checks"`
	Retry             *RetryPolicyConfig  `yaml:"retry,omitempty" json:"retry"`
	Pending           *PendingCaseConfig  `yaml:"pending,omitempty" json:"pending"`
	Skip              []*SkipEntryConfig  `yaml:"skip,omitempty" json:"skip"`
	Providers         []*ProviderConfig   `yaml:"providers" json:"providers"`
	Metrics           *MetricsConfig      `yaml:"metrics,omitempty" json:"metrics"`
	Tracing           *TracingConfig      `yaml:"tracing,omitempty" json:"tracing"`
	History           *ConnectorConfig    `yaml:"history,omitempty" json:"history"`
	Report            *ReportConfig       `yaml:"report,omitempty" json:"report"`
}

type ChecksConfig struct {
	// ReverseLookup enables the lookupAddress cases; they are planned but
	// reported as skipped otherwise.
	ReverseLookup bool `yaml:"reverseLookup" json:"reverseLookup"`
}

type RetryPolicyConfig struct {
	MaxAttempts    int      `yaml:"maxAttempts" json:"maxAttempts"`
	Delay          Duration `yaml:"delay" json:"delay"`
	AttemptTimeout Duration `yaml:"attemptTimeout" json:"attemptTimeout"`
	// Deterministic disables retries: the first failure is final.
	Deterministic bool `yaml:"deterministic,omitempty" json:"deterministic"`
}

type PendingCaseConfig struct {
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

type SkipEntryConfig struct {
	Provider  string    `yaml:"provider" json:"provider"`
	Operation Operation `yaml:"operation" json:"operation"`
}

type ProviderConfig struct {
	Id           string            `yaml:"id" json:"id"`
	Vendor       string            `yaml:"vendor" json:"vendor"`
	Settings     VendorSettings    `yaml:"settings,omitempty" json:"settings"`
	OnlyNetworks []string          `yaml:"onlyNetworks,omitempty" json:"onlyNetworks"`
	Endpoints    map[string]string `yaml:"endpoints,omitempty" json:"endpoints"`
	JsonRpc      *JsonRpcConfig    `yaml:"jsonRpc,omitempty" json:"jsonRpc"`
}

type VendorSettings map[string]interface{}

func (s VendorSettings) String(key string) string {
	if s == nil {
		return ""
	}
	v, _ := s[key].(string)
	return v
}

type JsonRpcConfig struct {
	Headers    map[string]string `yaml:"headers,omitempty" json:"headers"`
	EnableGzip *bool             `yaml:"enableGzip,omitempty" json:"enableGzip"`
	// JwtSecret is a hex-encoded HMAC secret; when set every request carries
	// a freshly signed bearer token.
	JwtSecret string   `yaml:"jwtSecret,omitempty" json:"-"`
	Timeout   Duration `yaml:"timeout,omitempty" json:"timeout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host,omitempty" json:"host"`
	Port    int    `yaml:"port,omitempty" json:"port"`
}

type TracingProtocol string

const (
	TracingProtocolHttp TracingProtocol = "http"
	TracingProtocolGrpc TracingProtocol = "grpc"
)

type TracingConfig struct {
	Enabled     bool            `yaml:"enabled" json:"enabled"`
	Endpoint    string          `yaml:"endpoint,omitempty" json:"endpoint"`
	Protocol    TracingProtocol `yaml:"protocol,omitempty" json:"protocol"`
	Insecure    bool            `yaml:"insecure,omitempty" json:"insecure"`
	SampleRate  float64         `yaml:"sampleRate,omitempty" json:"sampleRate"`
	ServiceName string          `yaml:"serviceName,omitempty" json:"serviceName"`
}

type ConnectorDriverType string

const (
	DriverMemory     ConnectorDriverType = "memory"
	DriverRedis      ConnectorDriverType = "redis"
	DriverPostgreSQL ConnectorDriverType = "postgresql"
	DriverDynamoDB   ConnectorDriverType = "dynamodb"
)

type ConnectorConfig struct {
	Driver     ConnectorDriverType        `yaml:"driver" json:"driver"`
	Memory     *MemoryConnectorConfig     `yaml:"memory,omitempty" json:"memory"`
	Redis      *RedisConnectorConfig      `yaml:"redis,omitempty" json:"redis"`
	PostgreSQL *PostgreSQLConnectorConfig `yaml:"postgresql,omitempty" json:"postgresql"`
	DynamoDB   *DynamoDBConnectorConfig   `yaml:"dynamodb,omitempty" json:"dynamodb"`
}

type MemoryConnectorConfig struct {
	MaxItems int `yaml:"maxItems" json:"maxItems"`
}

type RedisConnectorConfig struct {
	Addr        string   `yaml:"addr" json:"addr"`
	Password    string   `yaml:"password,omitempty" json:"-"`
	DB          int      `yaml:"db,omitempty" json:"db"`
	KeyPrefix   string   `yaml:"keyPrefix,omitempty" json:"keyPrefix"`
	InitTimeout Duration `yaml:"initTimeout,omitempty" json:"initTimeout"`
	GetTimeout  Duration `yaml:"getTimeout,omitempty" json:"getTimeout"`
	SetTimeout  Duration `yaml:"setTimeout,omitempty" json:"setTimeout"`
}

type PostgreSQLConnectorConfig struct {
	ConnectionUri string   `yaml:"connectionUri" json:"-"`
	Table         string   `yaml:"table,omitempty" json:"table"`
	MinConns      int32    `yaml:"minConns,omitempty" json:"minConns"`
	MaxConns      int32    `yaml:"maxConns,omitempty" json:"maxConns"`
	InitTimeout   Duration `yaml:"initTimeout,omitempty" json:"initTimeout"`
	GetTimeout    Duration `yaml:"getTimeout,omitempty" json:"getTimeout"`
	SetTimeout    Duration `yaml:"setTimeout,omitempty" json:"setTimeout"`
}

type DynamoDBConnectorConfig struct {
	Table            string         `yaml:"table,omitempty" json:"table"`
	Region           string         `yaml:"region" json:"region"`
	Endpoint         string         `yaml:"endpoint,omitempty" json:"endpoint"`
	Auth             *AwsAuthConfig `yaml:"auth,omitempty" json:"auth"`
	PartitionKeyName string         `yaml:"partitionKeyName,omitempty" json:"partitionKeyName"`
	InitTimeout      Duration       `yaml:"initTimeout,omitempty" json:"initTimeout"`
	GetTimeout       Duration       `yaml:"getTimeout,omitempty" json:"getTimeout"`
	SetTimeout       Duration       `yaml:"setTimeout,omitempty" json:"setTimeout"`
}

type AwsAuthConfig struct {
	Mode            string `yaml:"mode" json:"mode"` // "file", "env", "secret"
	CredentialsFile string `yaml:"credentialsFile,omitempty" json:"credentialsFile"`
	Profile         string `yaml:"profile,omitempty" json:"profile"`
	AccessKeyID     string `yaml:"accessKeyID,omitempty" json:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey,omitempty" json:"-"`
}

type ReportConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoadConfig loads the configuration from the specified file. ${VAR}
// references are expanded from the environment before parsing.
func LoadConfig(fs afero.Fs, filename string) (*Config, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewBufferString(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) LogLevelOrDefault() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
