package common

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, fs afero.Fs, body string) string {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "conformance.yaml", []byte(body), 0o644))
	return "conformance.yaml"
}

func TestLoadConfig_FailToReadFile(t *testing.T) {
	_, err := LoadConfig(afero.NewMemMapFs(), "nonexistent.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_InvalidYaml(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := LoadConfig(fs, writeConfig(t, fs, "invalid yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_UnknownField(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := LoadConfig(fs, writeConfig(t, fs, `
fixtures: [a.yaml]
providers: [{id: local}]
retries: 3
`))
	assert.Error(t, err)
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	t.Setenv("TEST_ALCHEMY_KEY", "secret-key")
	fs := afero.NewMemMapFs()
	cfg, err := LoadConfig(fs, writeConfig(t, fs, `
logLevel: debug
fixtures: [./fixtures/homestead.yaml]
networks: [homestead, goerli]
throttle: 250
retry:
  maxAttempts: 5
  delay: 2s
skip:
  - provider: "ether*"
    operation: "getBlock(blockHash)"
providers:
  - id: alchemy
    settings:
      apiKey: ${TEST_ALCHEMY_KEY}
    onlyNetworks: ["homestead|goerli"]
  - id: local
    vendor: jsonrpc
    endpoints:
      homestead: http://localhost:8545
history:
  driver: memory
`))
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Providers[0].Settings.String("apiKey"))
	assert.Equal(t, "alchemy", cfg.Providers[0].Vendor)
	assert.Equal(t, "jsonrpc", cfg.Providers[1].Vendor)
	assert.Equal(t, 250*time.Millisecond, cfg.Throttle.Duration())
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.Delay.Duration())
	assert.Equal(t, DefaultAttemptTimeout, cfg.Retry.AttemptTimeout.Duration())
	assert.Equal(t, OperationGetBlockByHash, cfg.Skip[0].Operation)
	assert.Equal(t, DefaultMemoryMaxItems, cfg.History.Memory.MaxItems)
	assert.Equal(t, []string{"cloudflare"}, cfg.ExcludedProviders)
	assert.Equal(t, "debug", cfg.LogLevelOrDefault().String())
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{
			Fixtures:  []string{"a.yaml"},
			Providers: []*ProviderConfig{{Id: "local", Vendor: "jsonrpc"}},
		}
		require.NoError(t, cfg.SetDefaults())
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"NoFixtures", func(c *Config) { c.Fixtures = nil }, "fixtures"},
		{"NoProviders", func(c *Config) { c.Providers = nil }, "provider"},
		{"DuplicateProvider", func(c *Config) {
			c.Providers = append(c.Providers, &ProviderConfig{Id: "local"})
		}, "duplicate provider id"},
		{"ZeroAttempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "maxAttempts"},
		{"NegativeThrottle", func(c *Config) { c.Throttle = Duration(-1).Ptr() }, "throttle"},
		{"SkipWithoutOperation", func(c *Config) {
			c.Skip = []*SkipEntryConfig{{Provider: "etherscan"}}
		}, "skip[0]"},
		{"EmptyNetworkPattern", func(c *Config) { c.Providers[0].OnlyNetworks = []string{"a||b"} }, "onlyNetworks"},
		{"RedisWithoutAddr", func(c *Config) {
			c.History = &ConnectorConfig{Driver: DriverRedis}
			c.History.SetDefaults()
		}, "history.redis.addr"},
		{"UnknownDriver", func(c *Config) { c.History = &ConnectorConfig{Driver: "cassandra"} }, "cassandra"},
		{"DynamoDBWithoutRegion", func(c *Config) {
			c.History = &ConnectorConfig{Driver: DriverDynamoDB}
			c.History.SetDefaults()
		}, "history.dynamodb.region"},
		{"DynamoDBSecretWithoutKeys", func(c *Config) {
			c.History = &ConnectorConfig{Driver: DriverDynamoDB, DynamoDB: &DynamoDBConnectorConfig{
				Region: "us-east-1",
				Auth:   &AwsAuthConfig{Mode: "secret"},
			}}
			c.History.SetDefaults()
		}, "accessKeyID"},
		{"DynamoDBUnknownAuthMode", func(c *Config) {
			c.History = &ConnectorConfig{Driver: DriverDynamoDB, DynamoDB: &DynamoDBConnectorConfig{
				Region: "us-east-1",
				Auth:   &AwsAuthConfig{Mode: "sso"},
			}}
			c.History.SetDefaults()
		}, "auth.mode"},
		{"UnknownTracingProtocol", func(c *Config) {
			c.Tracing = &TracingConfig{Enabled: true, Protocol: "zipkin"}
		}, "tracing protocol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, base().Validate())
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var out struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 1.5s\nb: 1500\n"), &out))
	assert.Equal(t, 1500*time.Millisecond, out.A.Duration())
	assert.Equal(t, 1500*time.Millisecond, out.B.Duration())

	assert.Error(t, yaml.Unmarshal([]byte("a: soon\n"), &out))
}
