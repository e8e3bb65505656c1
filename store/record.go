package store

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/shoplist/internal/shard"
	"github.com/jacentio/shoplist/list"
)

// PK represents a DynamoDB primary key.
type PK map[string]types.AttributeValue

// record is the stored shape of a list.
type record struct {
	PK        string      `dynamodbav:"pk"`
	SK        string      `dynamodbav:"sk"`
	ID        string      `dynamodbav:"id"`
	OwnerID   string      `dynamodbav:"owner_id"`
	Name      string      `dynamodbav:"name"`
	Items     []list.Item `dynamodbav:"items"`
	CreatedAt string      `dynamodbav:"created_at"`
	UpdatedAt string      `dynamodbav:"updated_at"`
	Version   int64       `dynamodbav:"version"`
	TTL       int64       `dynamodbav:"ttl,omitempty"`
}

// Key returns the primary key of the list id owned by ownerID.
func (s *Store) Key(id, ownerID string) PK {
	return PK{
		"pk": &types.AttributeValueMemberS{Value: shard.OwnerPK(ownerID, id, s.config.NumShards)},
		"sk": &types.AttributeValueMemberS{Value: shard.ListSK(id)},
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

func (r record) toList() (list.List, error) {
	if r.ID == "" || r.OwnerID == "" {
		return list.List{}, fmt.Errorf("%w: missing id or owner", ErrInvalidRecord)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return list.List{}, fmt.Errorf("%w: created_at: %v", ErrInvalidRecord, err)
	}
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return list.List{}, fmt.Errorf("%w: updated_at: %v", ErrInvalidRecord, err)
	}
	items := r.Items
	if items == nil {
		items = []list.Item{}
	}
	return list.List{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Items:     items,
		CreatedAt: created,
		UpdatedAt: updated,
		Version:   r.Version,
	}, nil
}

// DecodeList converts a raw list item into a list.List.
func DecodeList(raw map[string]types.AttributeValue) (list.List, error) {
	var r record
	if err := attributevalue.UnmarshalMap(raw, &r); err != nil {
		return list.List{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return r.toList()
}
