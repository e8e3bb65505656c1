package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo understands exactly the expressions Store builds.
type fakeDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	err      error
	queries  int
}

var _ DynamoAPI = (*fakeDynamo)(nil)

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func attrS(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func attrN(v types.AttributeValue) int64 {
	if n, ok := v.(*types.AttributeValueMemberN); ok {
		i, _ := strconv.ParseInt(n.Value, 10, 64)
		return i
	}
	return 0
}

func itemKey(item map[string]types.AttributeValue) string {
	return attrS(item["pk"]) + "|" + attrS(item["sk"])
}

func cloneItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func (f *fakeDynamo) conditionHolds(expr string, cur map[string]types.AttributeValue, exists bool, names map[string]string, values map[string]types.AttributeValue) bool {
	if expr == "" {
		return true
	}
	for _, part := range strings.Split(expr, " AND ") {
		switch part {
		case "attribute_exists(pk)":
			if !exists {
				return false
			}
		case "attribute_not_exists(pk)":
			if exists {
				return false
			}
		case "attribute_not_exists(#ttl)":
			if _, has := cur[names["#ttl"]]; has {
				return false
			}
		case "#owner = :owner":
			if attrS(cur[names["#owner"]]) != attrS(values[":owner"]) {
				return false
			}
		default:
			panic("fakeDynamo: unsupported condition " + part)
		}
	}
	return true
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	k := itemKey(in.Item)
	cur, exists := f.items[k]
	if !f.conditionHolds(aws.ToString(in.ConditionExpression), cur, exists, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, conditionFailed()
	}
	f.items[k] = cloneItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	k := itemKey(in.Key)
	cur, exists := f.items[k]
	names, values := in.ExpressionAttributeNames, in.ExpressionAttributeValues
	if !f.conditionHolds(aws.ToString(in.ConditionExpression), cur, exists, names, values) {
		return nil, conditionFailed()
	}

	next := cloneItem(cur)
	for k, v := range in.Key {
		next[k] = v
	}
	for _, clause := range strings.Split(strings.TrimPrefix(aws.ToString(in.UpdateExpression), "SET "), ", ") {
		lhs, rhs, _ := strings.Cut(clause, " = ")
		attr := names[lhs]
		if a, b, isSum := strings.Cut(rhs, " + "); isSum {
			sum := attrN(next[names[a]]) + attrN(values[b])
			next[attr] = &types.AttributeValueMemberN{Value: strconv.FormatInt(sum, 10)}
			continue
		}
		next[attr] = values[rhs]
	}
	f.items[k] = next

	out := &dynamodb.UpdateItemOutput{}
	if in.ReturnValues == types.ReturnValueAllNew {
		out.Attributes = cloneItem(next)
	}
	return out, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.err != nil {
		return nil, f.err
	}

	pk := attrS(in.ExpressionAttributeValues[":pk"])
	prefix := attrS(in.ExpressionAttributeValues[":prefix"])
	now := attrN(in.ExpressionAttributeValues[":now"])

	var keys []string
	for k, item := range f.items {
		if attrS(item["pk"]) == pk && strings.HasPrefix(attrS(item["sk"]), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	if in.ExclusiveStartKey != nil {
		start := itemKey(in.ExclusiveStartKey)
		i := sort.SearchStrings(keys, start)
		if i < len(keys) && keys[i] == start {
			i++
		}
		keys = keys[i:]
	}

	out := &dynamodb.QueryOutput{}
	if f.pageSize > 0 && len(keys) > f.pageSize {
		keys = keys[:f.pageSize]
		last := f.items[keys[len(keys)-1]]
		out.LastEvaluatedKey = map[string]types.AttributeValue{"pk": last["pk"], "sk": last["sk"]}
	}

	// Filters run after the page is cut, as in DynamoDB.
	for _, k := range keys {
		item := f.items[k]
		if ttl, has := item["ttl"]; has && attrN(ttl) <= now {
			continue
		}
		out.Items = append(out.Items, cloneItem(item))
	}
	return out, nil
}
