package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 2

var (
	keySchemaVersion   = []byte("schema_version")
	keyConventionsHash = []byte("conventions_hash")
)

// SchemaInfo stores the schema version and the hash of the conventions the
// stored chunks were extracted with.
type SchemaInfo struct {
	Version         int    `json:"version"`
	ConventionsHash string `json:"conventions_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}

		if data := b.Get(keySchemaVersion); data != nil {
			if err := json.Unmarshal(data, &info.Version); err != nil {
				info.Version = 1
			}
		}
		if data := b.Get(keyConventionsHash); data != nil {
			info.ConventionsHash = string(data)
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		data, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, data); err != nil {
			return err
		}
		return b.Put(keyConventionsHash, []byte(info.ConventionsHash))
	})
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	NeedsRebuild   bool
	OldVersion     int
	NewVersion     int
	Reason         string
}

// CheckMigration compares the stored schema and conventions hash with the
// running ones.
func (s *BoltStore) CheckMigration(conventionsHash string) (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case info.Version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Version > CurrentSchemaVersion:
		result.NeedsRebuild = true
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	if info.ConventionsHash != "" && info.ConventionsHash != conventionsHash {
		result.NeedsRebuild = true
		result.Reason = "extraction conventions changed"
	}

	return result, nil
}

// Migrate performs any necessary schema migrations and records the hash.
func (s *BoltStore) Migrate(conventionsHash string) error {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return err
	}

	for v := info.Version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return s.SetSchemaInfo(&SchemaInfo{
		Version:         CurrentSchemaVersion,
		ConventionsHash: conventionsHash,
	})
}

func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 1 && to == 2:
		// v1 kept routes inside the stats bucket
		return s.db.Update(func(tx *bbolt.Tx) error {
			stats := tx.Bucket(bucketStats)
			routes, err := tx.CreateBucketIfNotExists(bucketRoutes)
			if err != nil {
				return err
			}
			if data := stats.Get(keyRouteMap); data != nil {
				if err := routes.Put(keyRouteMap, append([]byte(nil), data...)); err != nil {
					return err
				}
				return stats.Delete(keyRouteMap)
			}
			return nil
		})
	default:
		return nil
	}
}

// Clear removes all extraction data, keeping the schema info.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range dataBuckets {
			b := tx.Bucket(name)
			if b == nil {
				continue
			}

			var keys [][]byte
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				keys = append(keys, append([]byte(nil), k...))
			}
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// NeedsRebuild reports whether stored results must be discarded.
func (s *BoltStore) NeedsRebuild(conventionsHash string) (bool, string, error) {
	result, err := s.CheckMigration(conventionsHash)
	if err != nil {
		return false, "", err
	}
	return result.NeedsRebuild, result.Reason, nil
}

// Prepare migrates the schema and clears stale results in one step.
func (s *BoltStore) Prepare(conventionsHash string) (rebuilt bool, err error) {
	check, err := s.CheckMigration(conventionsHash)
	if err != nil {
		return false, err
	}
	if check.NeedsRebuild {
		if err := s.Clear(); err != nil {
			return false, fmt.Errorf("failed to clear store: %w", err)
		}
	}
	if check.NeedsRebuild || check.NeedsMigration {
		if err := s.Migrate(conventionsHash); err != nil {
			return false, err
		}
	}
	return check.NeedsRebuild, nil
}
