// Package stream turns DynamoDB Streams records of the list table into list changes.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/shoplist/list"
	"github.com/jacentio/shoplist/store"
)

// Kind is the kind of change carried by a stream record.
type Kind int

const (
	// Upsert means the list was created or its fields were replaced.
	Upsert Kind = iota + 1
	// Delete means the list was marked for deletion or expired.
	Delete
)

func (k Kind) String() string {
	switch k {
	case Upsert:
		return "upsert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is a decoded list change. List is set for Upsert only.
type Change struct {
	Kind    Kind
	OwnerID string
	ListID  string
	List    list.List
}

// Sink receives decoded changes.
type Sink interface {
	ApplyChange(ctx context.Context, c Change) error
}

// Handler processes DynamoDB stream events for the list table.
type Handler struct {
	sink   Sink
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(sink Sink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sink:   sink,
		logger: logger,
	}
}

// HandleListChanges forwards every decodable record to the sink.
// It is shaped to be used as an AWS Lambda handler.
func (h *Handler) HandleListChanges(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		change, ok, err := Decode(record)
		if err != nil {
			// A record that cannot be decoded will never succeed; skip it.
			h.logger.Warn("skipping undecodable record",
				"eventID", record.EventID,
				"error", err,
			)
			continue
		}
		if !ok {
			continue
		}

		h.logger.Debug("applying list change",
			"eventID", record.EventID,
			"kind", change.Kind.String(),
			"listID", change.ListID,
		)

		if h.sink == nil {
			continue
		}
		if err := h.sink.ApplyChange(ctx, change); err != nil {
			h.logger.Error("failed to apply change",
				"eventID", record.EventID,
				"listID", change.ListID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// Decode converts a stream record into a Change. ok is false for records
// that carry nothing to apply, such as a TTL refresh on an already deleted list.
func Decode(record events.DynamoDBEventRecord) (change Change, ok bool, err error) {
	switch record.EventName {
	case "INSERT":
		return decodeUpsert(record.Change.NewImage)

	case "MODIFY":
		oldTTL := getNumberAttr(record.Change.OldImage, "ttl")
		newTTL := getNumberAttr(record.Change.NewImage, "ttl")
		switch {
		case oldTTL == 0 && newTTL != 0:
			return decodeDelete(record.Change.NewImage)
		case oldTTL != 0:
			return Change{}, false, nil
		default:
			return decodeUpsert(record.Change.NewImage)
		}

	case "REMOVE":
		return decodeDelete(record.Change.OldImage)
	}
	return Change{}, false, nil
}

func decodeUpsert(image map[string]events.DynamoDBAttributeValue) (Change, bool, error) {
	if getNumberAttr(image, "ttl") != 0 {
		return Change{}, false, nil
	}
	l, err := store.DecodeList(ConvertImage(image))
	if err != nil {
		return Change{}, false, err
	}
	return Change{Kind: Upsert, OwnerID: l.OwnerID, ListID: l.ID, List: l}, true, nil
}

func decodeDelete(image map[string]events.DynamoDBAttributeValue) (Change, bool, error) {
	ownerID := getStringAttr(image, "owner_id")
	listID := getStringAttr(image, "id")
	if ownerID == "" || listID == "" {
		return Change{}, false, fmt.Errorf("%w: delete without id or owner", store.ErrInvalidRecord)
	}
	return Change{Kind: Delete, OwnerID: ownerID, ListID: listID}, true, nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}

// ConvertImage converts a stream image into SDK attribute values so it can be
// decoded with the same codec as the store.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		if av := convertValue(v); av != nil {
			result[k] = av
		}
	}
	return result
}

func convertValue(v events.DynamoDBAttributeValue) types.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeList:
		var out []types.AttributeValue
		for _, e := range v.List() {
			if av := convertValue(e); av != nil {
				out = append(out, av)
			}
		}
		if out == nil {
			out = []types.AttributeValue{}
		}
		return &types.AttributeValueMemberL{Value: out}
	case events.DataTypeMap:
		return &types.AttributeValueMemberM{Value: ConvertImage(v.Map())}
	}
	return nil
}
