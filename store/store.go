package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/shoplist/internal/shard"
	"github.com/jacentio/shoplist/list"
)

// DynamoAPI is the subset of *dynamodb.Client used by Store.
type DynamoAPI interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store provides owner-scoped list persistence in DynamoDB.
type Store struct {
	client DynamoAPI
	config Config
	now    func() time.Time
	newID  func() string
}

// New creates a new Store instance.
func New(client DynamoAPI, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Config returns the validated configuration.
func (s *Store) Config() Config {
	return s.config
}

// Insert creates an empty list named name for ownerID.
// The returned list carries the store-assigned id and timestamps.
func (s *Store) Insert(ctx context.Context, ownerID, name string) (list.List, error) {
	if ownerID == "" {
		return list.List{}, ErrMissingOwner
	}

	id := s.newID()
	now := formatTime(s.now())
	rec := record{
		PK:        shard.OwnerPK(ownerID, id, s.config.NumShards),
		SK:        shard.ListSK(id),
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		Items:     []list.Item{},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return list.List{}, fmt.Errorf("marshal list: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return list.List{}, ErrAlreadyExists
		}
		return list.List{}, err
	}

	return rec.toList()
}

// Replace overwrites the patched fields of list id and returns the stored result.
// There is no version precondition: the last writer wins.
func (s *Store) Replace(ctx context.Context, id, ownerID string, patch list.Patch) (list.List, error) {
	if ownerID == "" {
		return list.List{}, ErrMissingOwner
	}

	setClauses := []string{"#updated_at = :updated_at", "#version = #version + :one"}
	exprNames := map[string]string{
		"#updated_at": "updated_at",
		"#version":    "version",
		"#ttl":        "ttl",
		"#owner":      "owner_id",
	}
	exprValues := map[string]types.AttributeValue{
		":updated_at": &types.AttributeValueMemberS{Value: formatTime(s.now())},
		":one":        &types.AttributeValueMemberN{Value: "1"},
		":owner":      &types.AttributeValueMemberS{Value: ownerID},
	}

	if patch.Name != nil {
		exprNames["#name"] = "name"
		exprValues[":name"] = &types.AttributeValueMemberS{Value: *patch.Name}
		setClauses = append(setClauses, "#name = :name")
	}
	if patch.Items != nil {
		itemsAttr, err := attributevalue.Marshal(patch.Items)
		if err != nil {
			return list.List{}, fmt.Errorf("marshal items: %w", err)
		}
		exprNames["#items"] = "items"
		exprValues[":items"] = itemsAttr
		setClauses = append(setClauses, "#items = :items")
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.Table),
		Key:                       s.Key(id, ownerID),
		UpdateExpression:          aws.String("SET " + joinStrings(setClauses, ", ")),
		ConditionExpression:       aws.String("attribute_exists(pk) AND attribute_not_exists(#ttl) AND #owner = :owner"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return list.List{}, ErrNotFound
		}
		return list.List{}, err
	}

	return DecodeList(out.Attributes)
}

// Remove marks list id for deletion by setting its TTL to now.
// Removing a list that is already deleted, or never existed, succeeds.
func (s *Store) Remove(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return ErrMissingOwner
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.config.Table),
		Key:                 s.Key(id, ownerID),
		UpdateExpression:    aws.String("SET #ttl = :now, #version = #version + :one"),
		ConditionExpression: aws.String("attribute_exists(pk) AND attribute_not_exists(#ttl)"),
		ExpressionAttributeNames: map[string]string{
			"#ttl":     "ttl",
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{
				Value: strconv.FormatInt(s.now().Unix(), 10),
			},
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})

	// Ignore condition failure - already deleted or absent
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return nil
	}
	return err
}

// ListAll returns every live list of ownerID, newest first.
func (s *Store) ListAll(ctx context.Context, ownerID string) ([]list.List, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	var lists []list.List
	var err error
	if s.config.NumShards == 1 {
		lists, err = s.queryShard(ctx, shard.ShardPK(ownerID, 0))
	} else {
		lists, err = s.queryAllShards(ctx, ownerID)
	}
	if err != nil {
		return nil, err
	}

	sortNewestFirst(lists)
	return lists, nil
}

func (s *Store) queryAllShards(ctx context.Context, ownerID string) ([]list.List, error) {
	var mu sync.Mutex
	var all []list.List
	var wg sync.WaitGroup
	errs := make(chan error, s.config.NumShards)

	for shardNum := 0; shardNum < s.config.NumShards; shardNum++ {
		wg.Add(1)
		go func(shardNum int) {
			defer wg.Done()

			lists, err := s.queryShard(ctx, shard.ShardPK(ownerID, shardNum))
			if err != nil {
				errs <- fmt.Errorf("shard %02x: %w", shardNum, err)
				return
			}

			mu.Lock()
			all = append(all, lists...)
			mu.Unlock()
		}(shardNum)
	}

	go func() {
		wg.Wait()
		close(errs)
	}()

	for err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return all, nil
}

// queryShard reads one partition with automatic TTL filtering.
func (s *Store) queryShard(ctx context.Context, pk string) ([]list.List, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.config.Table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		FilterExpression:       aws.String(TTLFilterExpr()),
		ExpressionAttributeNames: mergeExprNames(TTLFilterNames()),
		ExpressionAttributeValues: mergeExprValues(
			TTLFilterValues(s.now()),
			map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: pk},
				":prefix": &types.AttributeValueMemberS{Value: shard.ListSK("")},
			},
		),
	}

	var lists []list.List
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			l, err := DecodeList(raw)
			if err != nil {
				return nil, err
			}
			lists = append(lists, l)
		}
	}
	return lists, nil
}

func sortNewestFirst(lists []list.List) {
	sort.SliceStable(lists, func(i, j int) bool {
		if !lists[i].CreatedAt.Equal(lists[j].CreatedAt) {
			return lists[i].CreatedAt.After(lists[j].CreatedAt)
		}
		return lists[i].ID > lists[j].ID
	})
}

// joinStrings joins strings with a separator (avoiding strings package import).
func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for _, s := range strs[1:] {
		result += sep + s
	}
	return result
}
