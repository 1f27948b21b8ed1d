package common

import (
	"fmt"
	"time"
)

const (
	DefaultThrottle             = 1 * time.Second
	DefaultMaxAttempts          = 3
	DefaultRetryDelay           = 1 * time.Second
	DefaultAttemptTimeout       = 10 * time.Second
	DefaultPendingTimeout       = 15 * time.Second
	DefaultPendingNetwork       = "homestead"
	DefaultMetricsHost          = "0.0.0.0"
	DefaultMetricsPort          = 4001
	DefaultHistoryTable         = "conformance_verdicts"
	DefaultHistoryKeyPrefix     = "conformance"
	DefaultDynamoDBPartitionKey = "caseName"
	DefaultMemoryMaxItems       = 100_000
	DefaultConnectorTimeout     = 3 * time.Second
	DefaultJsonRpcTimeout       = 30 * time.Second
	DefaultTracingSampleRate    = 1.0
)

// DefaultExcludedProviders are administratively skipped unless the config
// names its own list.
var DefaultExcludedProviders = []string{"cloudflare"}

func (c *Config) SetDefaults() error {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.PendingNetwork == "" {
		c.PendingNetwork = DefaultPendingNetwork
	}
	if c.Throttle == nil {
		c.Throttle = Duration(DefaultThrottle).Ptr()
	}
	if c.ExcludedProviders == nil {
		c.ExcludedProviders = append([]string{}, DefaultExcludedProviders...)
	}
	if c.Checks == nil {
		c.Checks = &ChecksConfig{}
	}
	if c.Retry == nil {
		c.Retry = &RetryPolicyConfig{}
	}
	c.Retry.SetDefaults()
	if c.Pending == nil {
		c.Pending = &PendingCaseConfig{}
	}
	if c.Pending.Timeout == 0 {
		c.Pending.Timeout = Duration(DefaultPendingTimeout)
	}
	for _, p := range c.Providers {
		if err := p.SetDefaults(); err != nil {
			return err
		}
	}
	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
	c.Metrics.SetDefaults()
	if c.Tracing != nil {
		c.Tracing.SetDefaults()
	}
	if c.History != nil {
		c.History.SetDefaults()
	}
	return nil
}

func (r *RetryPolicyConfig) SetDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = DefaultMaxAttempts
	}
	if r.Delay == 0 {
		r.Delay = Duration(DefaultRetryDelay)
	}
	if r.AttemptTimeout == 0 {
		r.AttemptTimeout = Duration(DefaultAttemptTimeout)
	}
}

func (p *ProviderConfig) SetDefaults() error {
	if p.Vendor == "" {
		p.Vendor = p.Id
	}
	if p.JsonRpc == nil {
		p.JsonRpc = &JsonRpcConfig{}
	}
	if p.JsonRpc.Timeout == 0 {
		p.JsonRpc.Timeout = Duration(DefaultJsonRpcTimeout)
	}
	return nil
}

func (m *MetricsConfig) SetDefaults() {
	if m.Host == "" {
		m.Host = DefaultMetricsHost
	}
	if m.Port == 0 {
		m.Port = DefaultMetricsPort
	}
}

func (t *TracingConfig) SetDefaults() {
	if t.Protocol == "" {
		t.Protocol = TracingProtocolHttp
	}
	if t.SampleRate == 0 {
		t.SampleRate = DefaultTracingSampleRate
	}
	if t.ServiceName == "" {
		t.ServiceName = "conformance"
	}
}

func (c *ConnectorConfig) SetDefaults() {
	switch c.Driver {
	case DriverMemory:
		if c.Memory == nil {
			c.Memory = &MemoryConnectorConfig{}
		}
		if c.Memory.MaxItems == 0 {
			c.Memory.MaxItems = DefaultMemoryMaxItems
		}
	case DriverRedis:
		if c.Redis == nil {
			c.Redis = &RedisConnectorConfig{}
		}
		if c.Redis.KeyPrefix == "" {
			c.Redis.KeyPrefix = DefaultHistoryKeyPrefix
		}
		if c.Redis.InitTimeout == 0 {
			c.Redis.InitTimeout = Duration(DefaultConnectorTimeout)
		}
		if c.Redis.GetTimeout == 0 {
			c.Redis.GetTimeout = Duration(DefaultConnectorTimeout)
		}
		if c.Redis.SetTimeout == 0 {
			c.Redis.SetTimeout = Duration(DefaultConnectorTimeout)
		}
	case DriverPostgreSQL:
		if c.PostgreSQL == nil {
			c.PostgreSQL = &PostgreSQLConnectorConfig{}
		}
		if c.PostgreSQL.Table == "" {
			c.PostgreSQL.Table = DefaultHistoryTable
		}
		if c.PostgreSQL.MinConns == 0 {
			c.PostgreSQL.MinConns = 1
		}
		if c.PostgreSQL.MaxConns == 0 {
			c.PostgreSQL.MaxConns = 4
		}
		if c.PostgreSQL.InitTimeout == 0 {
			c.PostgreSQL.InitTimeout = Duration(DefaultConnectorTimeout)
		}
		if c.PostgreSQL.GetTimeout == 0 {
			c.PostgreSQL.GetTimeout = Duration(DefaultConnectorTimeout)
		}
		if c.PostgreSQL.SetTimeout == 0 {
			c.PostgreSQL.SetTimeout = Duration(DefaultConnectorTimeout)
		}
	case DriverDynamoDB:
		if c.DynamoDB == nil {
			c.DynamoDB = &DynamoDBConnectorConfig{}
		}
		if c.DynamoDB.Table == "" {
			c.DynamoDB.Table = DefaultHistoryTable
		}
		if c.DynamoDB.PartitionKeyName == "" {
			c.DynamoDB.PartitionKeyName = DefaultDynamoDBPartitionKey
		}
		if c.DynamoDB.InitTimeout == 0 {
			c.DynamoDB.InitTimeout = Duration(DefaultConnectorTimeout)
		}
		if c.DynamoDB.GetTimeout == 0 {
			c.DynamoDB.GetTimeout = Duration(DefaultConnectorTimeout)
		}
		if c.DynamoDB.SetTimeout == 0 {
			c.DynamoDB.SetTimeout = Duration(DefaultConnectorTimeout)
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Fixtures) == 0 {
		return NewErrInvalidConfig("at least one fixtures file is required")
	}
	if len(c.Providers) == 0 {
		return NewErrInvalidConfig("at least one provider is required")
	}
	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Id == "" {
			return NewErrInvalidConfig(fmt.Sprintf("providers[%d].id is required", i))
		}
		if seen[p.Id] {
			return NewErrInvalidConfig(fmt.Sprintf("duplicate provider id %q", p.Id))
		}
		seen[p.Id] = true
		for _, pattern := range p.OnlyNetworks {
			if err := ValidatePattern(pattern); err != nil {
				return NewErrInvalidConfig(fmt.Sprintf("providers[%d].onlyNetworks: %v", i, err))
			}
		}
	}
	if c.Retry.MaxAttempts < 1 {
		return NewErrInvalidConfig("retry.maxAttempts must be at least 1")
	}
	if c.Retry.Delay < 0 || c.Retry.AttemptTimeout < 0 {
		return NewErrInvalidConfig("retry durations must not be negative")
	}
	if c.Throttle != nil && *c.Throttle < 0 {
		return NewErrInvalidConfig("throttle must not be negative")
	}
	for i, s := range c.Skip {
		if s.Provider == "" || s.Operation == "" {
			return NewErrInvalidConfig(fmt.Sprintf("skip[%d] needs both provider and operation", i))
		}
		if err := ValidatePattern(s.Provider); err != nil {
			return NewErrInvalidConfig(fmt.Sprintf("skip[%d].provider: %v", i, err))
		}
	}
	if c.History != nil {
		switch c.History.Driver {
		case DriverMemory:
		case DriverRedis:
			if c.History.Redis.Addr == "" {
				return NewErrInvalidConfig("history.redis.addr is required")
			}
		case DriverPostgreSQL:
			if c.History.PostgreSQL.ConnectionUri == "" {
				return NewErrInvalidConfig("history.postgresql.connectionUri is required")
			}
		case DriverDynamoDB:
			if c.History.DynamoDB == nil || c.History.DynamoDB.Region == "" {
				return NewErrInvalidConfig("history.dynamodb.region is required")
			}
			if auth := c.History.DynamoDB.Auth; auth != nil {
				switch auth.Mode {
				case "file", "env":
				case "secret":
					if auth.AccessKeyID == "" || auth.SecretAccessKey == "" {
						return NewErrInvalidConfig("history.dynamodb.auth needs accessKeyID and secretAccessKey in secret mode")
					}
				default:
					return NewErrInvalidConfig(fmt.Sprintf("unsupported history.dynamodb.auth.mode %q", auth.Mode))
				}
			}
		default:
			return NewErrInvalidConnectorDriver(string(c.History.Driver))
		}
	}
	if c.Tracing != nil && c.Tracing.Enabled {
		if c.Tracing.Protocol != TracingProtocolHttp && c.Tracing.Protocol != TracingProtocolGrpc {
			return NewErrInvalidConfig(fmt.Sprintf("unsupported tracing protocol %q", c.Tracing.Protocol))
		}
	}
	return nil
}
