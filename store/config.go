package store

// Config holds configuration for the Store.
type Config struct {
	// Table is the name of the list table.
	// Default: "shoplist_lists"
	Table string

	// NumShards is the number of partitions per owner.
	// Higher values spread an owner's writes but ListAll issues one query per shard.
	// Default: 1 (no sharding, single query)
	// Max: 256
	NumShards int
}

// DefaultConfig returns sensible defaults for a single-tenant table.
func DefaultConfig() Config {
	return Config{
		Table:     "shoplist_lists",
		NumShards: 1,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "shoplist_lists"
	}
	if c.NumShards < 1 {
		c.NumShards = 1
	}
	if c.NumShards > 256 {
		c.NumShards = 256
	}
}
