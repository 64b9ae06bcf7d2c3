package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest()
	require.NoError(t, err)

	assert.Equal(t, uint(3), m.Version)
	assert.Equal(t, "3", m.VersionString())
	assert.Equal(t, []string{
		"000001_init_schema.up.sql",
		"000002_utility_bills.up.sql",
		"000003_payments_invoices.up.sql",
	}, m.Steps)
}

func TestManifestChecksumMatchesMigrationFiles(t *testing.T) {
	m, err := LoadManifest()
	require.NoError(t, err)

	h := sha256.New()
	for _, name := range m.Steps {
		content, err := os.ReadFile(filepath.Join("migrations", name))
		require.NoError(t, err)
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write(content)
		h.Write([]byte{0})
	}
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), m.Checksum)
}

func TestReadManifestRejectsBrokenSets(t *testing.T) {
	step := &fstest.MapFile{Data: []byte("SELECT 1;")}

	cases := map[string]fstest.MapFS{
		"gap": {
			"m/000001_init.up.sql":    step,
			"m/000001_init.down.sql":  step,
			"m/000003_bills.up.sql":   step,
			"m/000003_bills.down.sql": step,
		},
		"missing down": {
			"m/000001_init.up.sql": step,
		},
		"bad name": {
			"m/init.up.sql":   step,
			"m/init.down.sql": step,
		},
		"empty": {
			"m/README": &fstest.MapFile{Data: []byte("x")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := readManifest(fsys, "m")
			assert.Error(t, err)
		})
	}
}

func TestManifestChecksumFollowsContent(t *testing.T) {
	build := func(sql string) fstest.MapFS {
		return fstest.MapFS{
			"m/000001_bills.up.sql":   &fstest.MapFile{Data: []byte(sql)},
			"m/000001_bills.down.sql": &fstest.MapFile{Data: []byte("DROP TABLE utility_bills;")},
		}
	}
	a, err := readManifest(build("CREATE TABLE utility_bills (id BIGINT);"), "m")
	require.NoError(t, err)
	b, err := readManifest(build("CREATE TABLE utility_bills (id BIGINT, rate NUMERIC);"), "m")
	require.NoError(t, err)

	assert.Equal(t, uint(1), a.Version)
	assert.NotEqual(t, a.Checksum, b.Checksum)
}

func TestParseStepName(t *testing.T) {
	v, dir, ok := parseStepName("000002_utility_bills.up.sql")
	require.True(t, ok)
	assert.Equal(t, uint(2), v)
	assert.Equal(t, "up", dir)

	_, dir, ok = parseStepName("000002_utility_bills.down.sql")
	require.True(t, ok)
	assert.Equal(t, "down", dir)

	for _, name := range []string{"utility_bills.up.sql", "000002.up.sql", "000002_bills.sql", "000000_zero.up.sql"} {
		_, _, ok := parseStepName(name)
		assert.False(t, ok, name)
	}
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"properties", "units", "tenants", "utility_bills", "payments", "invoices"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("utility_bills", "ux_utility_bills_unit_month"))
}
