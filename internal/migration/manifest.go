package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Manifest describes the embedded schema: the version the database reaches
// after migrate and a checksum over every up step, in order.
type Manifest struct {
	Version  uint
	Checksum string
	Steps    []string
}

// VersionString is the form stored in schema_state.
func (m Manifest) VersionString() string {
	return strconv.FormatUint(uint64(m.Version), 10)
}

func LoadManifest() (Manifest, error) {
	return readManifest(embeddedMigrations, migrationsDir)
}

// readManifest requires versions to run 1..N without gaps and every up step
// to have a matching down step.
func readManifest(fsys fs.FS, dir string) (Manifest, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Manifest{}, fmt.Errorf("list migrations: %w", err)
	}

	ups := make(map[uint]string)
	downs := make(map[uint]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		version, direction, ok := parseStepName(name)
		if !ok {
			return Manifest{}, fmt.Errorf("invalid migration filename: %s", name)
		}
		switch direction {
		case "up":
			if prev, dup := ups[version]; dup {
				return Manifest{}, fmt.Errorf("migration %d defined twice: %s, %s", version, prev, name)
			}
			ups[version] = name
		case "down":
			downs[version] = true
		}
	}
	if len(ups) == 0 {
		return Manifest{}, errors.New("no embedded migrations found")
	}

	versions := make([]uint, 0, len(ups))
	for v := range ups {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	m := Manifest{Steps: make([]string, 0, len(versions))}
	hasher := sha256.New()
	for i, v := range versions {
		if v != uint(i+1) {
			return Manifest{}, fmt.Errorf("migration %06d is missing", i+1)
		}
		name := ups[v]
		if !downs[v] {
			return Manifest{}, fmt.Errorf("migration %s has no down step", name)
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return Manifest{}, fmt.Errorf("read migration %s: %w", name, err)
		}
		hasher.Write([]byte(name))
		hasher.Write([]byte{0})
		hasher.Write(content)
		hasher.Write([]byte{0})
		m.Steps = append(m.Steps, name)
		m.Version = v
	}
	m.Checksum = hex.EncodeToString(hasher.Sum(nil))
	return m, nil
}

// parseStepName splits golang-migrate names such as 000002_utility_bills.up.sql.
func parseStepName(name string) (uint, string, bool) {
	base, ok := strings.CutSuffix(name, ".sql")
	if !ok {
		return 0, "", false
	}
	var direction string
	switch {
	case strings.HasSuffix(base, ".up"):
		direction, base = "up", strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		direction, base = "down", strings.TrimSuffix(base, ".down")
	default:
		return 0, "", false
	}
	prefix, title, ok := strings.Cut(base, "_")
	if !ok || title == "" {
		return 0, "", false
	}
	version, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil || version == 0 {
		return 0, "", false
	}
	return uint(version), direction, true
}
