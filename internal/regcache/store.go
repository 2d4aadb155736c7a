package regcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps a gorm connection to the resolution cache's embedded
// SQLite database, grounded on the teacher's Connect-then-Migrate
// shape (`db/sqlite.go`).
type Store struct {
	db *gorm.DB
}

// Open connects to (creating if absent) the SQLite file at path and
// runs migrations. debug enables gorm's info-level query logging, the
// same toggle the teacher exposes on Connect.
func Open(path string, debug bool) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("regcache: creating cache directory %s: %w", dir, err)
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("regcache: opening %s: %w", path, err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("regcache: migrating %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Migrate applies the schema for every model this cache stores.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ResolvedVersion{})
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Lookup returns the cached resolution for (workspaceRoot, pkg) if one
// exists and was resolved under exactly constraintSet (a change in
// accumulated constraints invalidates the cache entry — the caller is
// expected to re-resolve and Put a fresh row).
func (s *Store) Lookup(workspaceRoot, pkg, constraintSet string) (*ResolvedVersion, bool, error) {
	var row ResolvedVersion
	err := s.db.Where("workspace_root = ? AND package_name = ?", workspaceRoot, pkg).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("regcache: looking up %s/%s: %w", workspaceRoot, pkg, err)
	}
	if row.ConstraintSet != constraintSet {
		return nil, false, nil
	}
	return &row, true, nil
}

// Put upserts a resolution result, replacing any prior cached entry
// for the same (workspaceRoot, pkg).
func (s *Store) Put(row ResolvedVersion) error {
	var existing ResolvedVersion
	err := s.db.Where("workspace_root = ? AND package_name = ?", row.WorkspaceRoot, row.PackageName).First(&existing).Error
	switch {
	case err == nil:
		row.ID = existing.ID
		return s.db.Save(&row).Error
	case err == gorm.ErrRecordNotFound:
		return s.db.Create(&row).Error
	default:
		return fmt.Errorf("regcache: upserting %s/%s: %w", row.WorkspaceRoot, row.PackageName, err)
	}
}

// CapabilityList decodes the cached row's JSON capability list.
func (rv ResolvedVersion) CapabilityList() ([]string, error) {
	var caps []string
	if len(rv.Capabilities) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(rv.Capabilities, &caps); err != nil {
		return nil, fmt.Errorf("regcache: decoding capabilities: %w", err)
	}
	return caps, nil
}

// Invalidate drops every cached resolution for a workspace, used when
// a manifest changes in a way that should force full re-resolution.
func (s *Store) Invalidate(workspaceRoot string) error {
	return s.db.Where("workspace_root = ?", workspaceRoot).Delete(&ResolvedVersion{}).Error
}
