// Package sqlite provides a SQLite-backed profile cache.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/persistence/sqlite/migrations"
)

// Ensure interface compliance
var _ ports.ProfileCache = (*Cache)(nil)

// Cache persists single-phase profiles across runs.
type Cache struct {
	db     *sql.DB
	compat *semver.Constraints
}

// dsnPragmas are applied by modernc.org/sqlite to every new connection.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)" +
	"&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Open opens (creating if needed) the cache database at path and applies
// embedded migrations. Entries written by a kernel outside the
// ~<major>.<minor> range of kernelVersion are reported as misses.
func Open(ctx context.Context, path, kernelVersion string) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	compat, err := compatibility(kernelVersion)
	if err != nil {
		return nil, err
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dsn := cleanPath + dsnPragmas
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Cache{db: db, compat: compat}, nil
}

// compatibility builds the ~major.minor constraint for a kernel version.
func compatibility(kernelVersion string) (*semver.Constraints, error) {
	v, err := semver.NewVersion(kernelVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid kernel version %q: %w", kernelVersion, err)
	}
	c, err := semver.NewConstraint(fmt.Sprintf("~%d.%d", v.Major(), v.Minor()))
	if err != nil {
		return nil, fmt.Errorf("invalid kernel constraint: %w", err)
	}
	return c, nil
}

// Close closes the SQLite handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached profile for key. Stale or unreadable entries are misses.
func (c *Cache) Get(ctx context.Context, key values.ProfileKey) (ports.CachedProfile, bool, error) {
	if err := ctx.Err(); err != nil {
		return ports.CachedProfile{}, false, err
	}

	var (
		label, kernel string
		count         int
		blob          []byte
		createdAt     int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT label, kernel_version, point_count, intensities, created_at
		   FROM profile_cache WHERE cache_key = ?`,
		key.String(),
	).Scan(&label, &kernel, &count, &blob, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.CachedProfile{}, false, nil
	}
	if err != nil {
		return ports.CachedProfile{}, false, fmt.Errorf("query profile cache: %w", err)
	}

	if !c.compatible(kernel) {
		return ports.CachedProfile{}, false, nil
	}
	intensities, ok := decodeFloats(blob, count)
	if !ok {
		return ports.CachedProfile{}, false, nil
	}

	return ports.CachedProfile{
		Label:         label,
		KernelVersion: kernel,
		Intensities:   intensities,
		CreatedAt:     time.UnixMilli(createdAt).UTC(),
	}, true, nil
}

// Put stores or replaces the entry for key.
func (c *Cache) Put(ctx context.Context, key values.ProfileKey, p ports.CachedProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO profile_cache (
		   cache_key, source_digest, label, kernel_version, point_count, intensities, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		   label = excluded.label,
		   kernel_version = excluded.kernel_version,
		   point_count = excluded.point_count,
		   intensities = excluded.intensities,
		   created_at = excluded.created_at`,
		key.String(),
		key.SourceDigest,
		p.Label,
		p.KernelVersion,
		len(p.Intensities),
		encodeFloats(p.Intensities),
		createdAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write profile cache: %w", err)
	}
	return nil
}

// Prune deletes entries written by an incompatible kernel and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT kernel_version FROM profile_cache`)
	if err != nil {
		return 0, fmt.Errorf("list kernel versions: %w", err)
	}
	var stale []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan kernel version: %w", err)
		}
		if !c.compatible(v) {
			stale = append(stale, v)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	removed := 0
	for _, v := range stale {
		res, err := c.db.ExecContext(ctx, `DELETE FROM profile_cache WHERE kernel_version = ?`, v)
		if err != nil {
			return removed, fmt.Errorf("delete stale entries: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += int(n)
	}
	return removed, nil
}

func (c *Cache) compatible(kernel string) bool {
	v, err := semver.NewVersion(kernel)
	if err != nil {
		return false
	}
	return c.compat.Check(v)
}

// encodeFloats packs values as little-endian IEEE 754 doubles.
func encodeFloats(vals []float64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeFloats(buf []byte, count int) ([]float64, bool) {
	if len(buf) != 8*count {
		return nil, false
	}
	vals := make([]float64, count)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return vals, true
}
