package data

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/erpc/conformance/common"
	"github.com/rs/zerolog"
)

const dynamoValueAttribute = "value"

type DynamoDBConnector struct {
	logger           *zerolog.Logger
	client           *dynamodb.DynamoDB
	cfg              *common.DynamoDBConnectorConfig
	table            string
	partitionKeyName string
}

var _ Connector = (*DynamoDBConnector)(nil)

func NewDynamoDBConnector(
	ctx context.Context,
	logger *zerolog.Logger,
	cfg *common.DynamoDBConnectorConfig,
) (*DynamoDBConnector, error) {
	lg := logger.With().Str("connector", "dynamodb").Logger()
	lg.Debug().Str("table", cfg.Table).Str("region", cfg.Region).Msg("creating dynamodb connector")

	sess, err := createSession(cfg)
	if err != nil {
		return nil, err
	}
	client := dynamodb.New(sess, &aws.Config{
		Endpoint: aws.String(cfg.Endpoint),
		Region:   aws.String(cfg.Region),
		HTTPClient: &http.Client{
			Timeout: cfg.SetTimeout.Duration(),
		},
		MaxRetries: aws.Int(2),
	})

	d := &DynamoDBConnector{
		logger:           &lg,
		client:           client,
		cfg:              cfg,
		table:            cfg.Table,
		partitionKeyName: cfg.PartitionKeyName,
	}

	initCtx, cancel := context.WithTimeout(ctx, cfg.InitTimeout.Duration())
	defer cancel()
	if err := d.createTableIfNotExists(initCtx); err != nil {
		return nil, fmt.Errorf("failed to prepare dynamodb table %s: %w", cfg.Table, err)
	}
	lg.Info().Str("table", cfg.Table).Msg("connected to dynamodb")

	return d, nil
}

func createSession(cfg *common.DynamoDBConnectorConfig) (*session.Session, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("missing region for dynamodb connector")
	}
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
		HTTPClient: &http.Client{
			Timeout: cfg.InitTimeout.Duration(),
		},
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.Auth != nil {
		switch cfg.Auth.Mode {
		case "file":
			awsCfg.Credentials = credentials.NewSharedCredentials(cfg.Auth.CredentialsFile, cfg.Auth.Profile)
		case "env":
			awsCfg.Credentials = credentials.NewEnvCredentials()
		case "secret":
			awsCfg.Credentials = credentials.NewStaticCredentials(cfg.Auth.AccessKeyID, cfg.Auth.SecretAccessKey, "")
		default:
			return nil, fmt.Errorf("unsupported auth.mode for dynamodb connector: %s", cfg.Auth.Mode)
		}
	}
	return session.NewSession(awsCfg)
}

func (d *DynamoDBConnector) createTableIfNotExists(ctx context.Context) error {
	d.logger.Debug().Msgf("creating dynamodb table '%s' if not exists with partition key '%s'", d.table, d.partitionKeyName)
	_, err := d.client.CreateTableWithContext(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(d.table),
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String(d.partitionKeyName),
				KeyType:       aws.String(dynamodb.KeyTypeHash),
			},
		},
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String(d.partitionKeyName),
				AttributeType: aws.String(dynamodb.ScalarAttributeTypeS),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
	})
	var aerr awserr.Error
	if err != nil && !(errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeResourceInUseException) {
		return err
	}

	return d.client.WaitUntilTableExistsWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.table),
	}, request.WithWaiterDelay(request.ConstantWaiterDelay(500*time.Millisecond)))
}

func (d *DynamoDBConnector) Id() string {
	return string(common.DriverDynamoDB)
}

func (d *DynamoDBConnector) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.GetTimeout.Duration())
	defer cancel()

	d.logger.Trace().Str("key", key).Msg("reading from dynamodb")
	result, err := d.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]*dynamodb.AttributeValue{
			d.partitionKeyName: {S: aws.String(key)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	value, ok := result.Item[dynamoValueAttribute]
	if !ok || value.S == nil {
		return "", common.NewErrRecordNotFound(key, d.Id())
	}
	return *value.S, nil
}

func (d *DynamoDBConnector) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.SetTimeout.Duration())
	defer cancel()

	d.logger.Trace().Str("key", key).Msg("writing to dynamodb")
	_, err := d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item: map[string]*dynamodb.AttributeValue{
			d.partitionKeyName:   {S: aws.String(key)},
			dynamoValueAttribute: {S: aws.String(value)},
			"updatedAt":          {S: aws.String(time.Now().UTC().Format(time.RFC3339))},
		},
	})
	return err
}

func (d *DynamoDBConnector) Close() error {
	return nil
}
