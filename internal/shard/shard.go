// Package shard provides partition key generation for the owner-scoped list table.
package shard

import (
	"fmt"
	"hash/fnv"
)

// MaxShards bounds the number of partitions per owner.
const MaxShards = 256

// OwnerPK computes the partition key for a list record.
// With numShards=1, every list of an owner goes to shard "00".
// With numShards>1, lists are distributed across shards by a hash of listID.
func OwnerPK(ownerID, listID string, numShards int) string {
	if numShards <= 1 {
		return ShardPK(ownerID, 0)
	}
	if numShards > MaxShards {
		numShards = MaxShards
	}
	h := fnv.New32a()
	h.Write([]byte(listID))
	return ShardPK(ownerID, int(h.Sum32()%uint32(numShards)))
}

// ShardPK returns the partition key of one shard of an owner.
func ShardPK(ownerID string, shard int) string {
	return fmt.Sprintf("owner#%s#%02x", ownerID, shard)
}

// ListSK returns the sort key of a list record.
func ListSK(listID string) string {
	return "list#" + listID
}
