// Package regcache implements the resolution cache backing the
// registry's version resolver: a local, embedded SQLite store (via
// gorm + glebarez/sqlite, grounded on the teacher's
// `db/sqlite.go`/`models/models.go` connect-and-migrate shape) that
// stores a workspace's semver resolution results and verified
// lockfile checksums. No other package imports it: `build` and the
// registry's resolver do not read from or write to this cache.
package regcache

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ResolvedVersion is one cached resolution outcome for a single
// dependency within one workspace: the version picked, the checksum
// verified against its source tree, and the capability set recorded
// at resolution time (§4.4a).
type ResolvedVersion struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	WorkspaceRoot string `gorm:"type:text;index:idx_workspace_pkg,unique"`
	PackageName   string `gorm:"type:varchar(255);index:idx_workspace_pkg,unique"`

	Version      string         `gorm:"type:varchar(64)"`
	Source       string         `gorm:"type:text"`
	Checksum     string         `gorm:"type:varchar(80)"`
	Capabilities datatypes.JSON `gorm:"type:jsonb"`

	ConstraintSet string    `gorm:"type:text"` // the accumulated constraints this resolution satisfied
	ResolvedAt    time.Time `gorm:"autoCreateTime"`
}

// NewResolvedVersion builds a row with a fresh cache-row identity,
// ready to insert.
func NewResolvedVersion(workspaceRoot, pkg, version, source, checksum string, caps []string, constraintSet string) ResolvedVersion {
	capsJSON, _ := json.Marshal(caps)
	return ResolvedVersion{
		ID:            uuid.NewString(),
		WorkspaceRoot: workspaceRoot,
		PackageName:   pkg,
		Version:       version,
		Source:        source,
		Checksum:      checksum,
		Capabilities:  datatypes.JSON(capsJSON),
		ConstraintSet: constraintSet,
	}
}
