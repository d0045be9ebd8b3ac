package dynamodb

import (
	"context"
	"fmt"
	"time"

	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	batchGetLimit = 100
	// sortKeyTime is fixed width so message sort keys order chronologically
	sortKeyTime = "2006-01-02T15:04:05.000000000Z"
)

// API is the subset of the DynamoDB client the store uses
type API interface {
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// nodeItem represents the DynamoDB item structure for a chat node
type nodeItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	NodeID     string `dynamodbav:"NodeID"`
	OwnerID    string `dynamodbav:"OwnerID"`
	Title      string `dynamodbav:"Title,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

// messageItem represents the DynamoDB item structure for a chat message
type messageItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	MessageID  string `dynamodbav:"MessageID"`
	NodeID     string `dynamodbav:"NodeID"`
	Role       string `dynamodbav:"Role"`
	Content    string `dynamodbav:"Content"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

// ChatStore implements ports.ChatStore using a single DynamoDB table
type ChatStore struct {
	client     API
	tableName  string
	logger     *zap.Logger
	maxRetries int
	backoff    time.Duration
}

// NewChatStore creates a new DynamoDB chat store
func NewChatStore(client API, tableName string, logger *zap.Logger) *ChatStore {
	return &ChatStore{
		client:     client,
		tableName:  tableName,
		logger:     logger.With(zap.String("store", "dynamodb")),
		maxRetries: 5,
		backoff:    100 * time.Millisecond,
	}
}

// WithRetryBackoff sets the base delay between unprocessed-key retries
func (s *ChatStore) WithRetryBackoff(d time.Duration) *ChatStore {
	s.backoff = d
	return s
}

func nodeKey(id valueobjects.PersistedID) string {
	return fmt.Sprintf("NODE#%s", id)
}

func messageSortKey(createdAt time.Time, id string) string {
	return fmt.Sprintf("MSG#%s#%s", createdAt.UTC().Format(sortKeyTime), id)
}

// GetOwners implements ports.NodeOwnerReader with chunked BatchGetItem calls
func (s *ChatStore) GetOwners(ctx context.Context, ids []valueobjects.PersistedID) (map[valueobjects.PersistedID]valueobjects.UserID, error) {
	owners := make(map[valueobjects.PersistedID]valueobjects.UserID, len(ids))

	seen := make(map[valueobjects.PersistedID]bool, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: nodeKey(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		})
	}
	if len(keys) == 0 {
		return owners, nil
	}

	proj := expression.NamesList(expression.Name("NodeID"), expression.Name("OwnerID"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build projection: %w", err)
	}

	for i := 0; i < len(keys); i += batchGetLimit {
		end := i + batchGetLimit
		if end > len(keys) {
			end = len(keys)
		}

		items, err := s.batchGetChunk(ctx, keys[i:end], expr)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			var node nodeItem
			if err := attributevalue.UnmarshalMap(item, &node); err != nil {
				s.logger.Error("Failed to unmarshal node item", zap.Error(err))
				return nil, pkgerrors.NewDatabaseError("decode node", err)
			}
			owners[valueobjects.PersistedID(node.NodeID)] = valueobjects.UserID(node.OwnerID)
		}
	}

	return owners, nil
}

func (s *ChatStore) batchGetChunk(
	ctx context.Context,
	keys []map[string]types.AttributeValue,
	expr expression.Expression,
) ([]map[string]types.AttributeValue, error) {
	request := func(keys []map[string]types.AttributeValue) *dynamodb.BatchGetItemInput {
		return &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				s.tableName: {
					Keys:                     keys,
					ProjectionExpression:     expr.Projection(),
					ExpressionAttributeNames: expr.Names(),
				},
			},
		}
	}

	input := request(keys)
	var items []map[string]types.AttributeValue

	for attempt := 0; ; attempt++ {
		output, err := s.client.BatchGetItem(ctx, input)
		if err != nil {
			s.logger.Error("BatchGetItem failed", zap.Int("keys", len(keys)), zap.Error(err))
			return nil, pkgerrors.NewDatabaseError("batch get nodes", err)
		}

		items = append(items, output.Responses[s.tableName]...)

		unprocessed := output.UnprocessedKeys[s.tableName].Keys
		if len(unprocessed) == 0 {
			return items, nil
		}
		if attempt >= s.maxRetries {
			return nil, pkgerrors.NewDatabaseError("batch get nodes",
				fmt.Errorf("%d keys still unprocessed after %d retries", len(unprocessed), attempt))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(1<<attempt) * s.backoff):
		}

		input = request(unprocessed)
	}
}

// ListByNodes implements ports.MessageReader, querying each node's partition
func (s *ChatStore) ListByNodes(ctx context.Context, ids []valueobjects.PersistedID) ([]*entities.Message, error) {
	messages := []*entities.Message{}

	for _, id := range ids {
		keyCond := expression.Key("PK").Equal(expression.Value(nodeKey(id))).
			And(expression.Key("SK").BeginsWith("MSG#"))
		expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build key condition: %w", err)
		}

		paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				s.logger.Error("Failed to query messages",
					zap.String("nodeID", id.String()),
					zap.Error(err),
				)
				return nil, pkgerrors.NewDatabaseError("query messages", err)
			}

			for _, raw := range page.Items {
				msg, err := s.toMessage(raw)
				if err != nil {
					s.logger.Error("Malformed message item",
						zap.String("nodeID", id.String()),
						zap.Error(err),
					)
					return nil, pkgerrors.NewDatabaseError("decode message", err)
				}
				messages = append(messages, msg)
			}
		}
	}

	return messages, nil
}

func (s *ChatStore) toMessage(raw map[string]types.AttributeValue) (*entities.Message, error) {
	var item messageItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, err
	}
	role, err := valueobjects.ParseRole(item.Role)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt %q: %w", item.CreatedAt, err)
	}
	return entities.ReconstructMessage(item.MessageID, valueobjects.PersistedID(item.NodeID), role, item.Content, createdAt)
}

// SaveNode writes the node metadata item
func (s *ChatStore) SaveNode(ctx context.Context, node *entities.ChatNode) error {
	item := nodeItem{
		PK:         nodeKey(node.ID()),
		SK:         "METADATA",
		EntityType: "NODE",
		NodeID:     node.ID().String(),
		OwnerID:    node.OwnerID().String(),
		Title:      node.Title(),
		CreatedAt:  node.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
	return s.put(ctx, item, "save node")
}

// SaveMessage writes a message item under its node's partition
func (s *ChatStore) SaveMessage(ctx context.Context, message *entities.Message) error {
	id := message.ID()
	if id == "" {
		id = uuid.New().String()
	}
	item := messageItem{
		PK:         nodeKey(message.NodeID()),
		SK:         messageSortKey(message.CreatedAt(), id),
		EntityType: "MESSAGE",
		MessageID:  id,
		NodeID:     message.NodeID().String(),
		Role:       message.Role().String(),
		Content:    message.Content(),
		CreatedAt:  message.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
	return s.put(ctx, item, "save message")
}

func (s *ChatStore) put(ctx context.Context, item interface{}, op string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return pkgerrors.NewDatabaseError(op, err)
	}
	return nil
}

