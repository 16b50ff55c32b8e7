package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPublic = `threads_per_page: 20
users_per_page: 20
max_page_size: 100
min_text_length: 3
max_text_length: 10000
children_repair_interval: 10m
view_cache_ttl: 30s
cors_origins: ["http://localhost:3000"]
log_level: debug
`

const validPrivate = `pg:
  host: localhost
  port: 5432
  user: threadly
  password: secret
  dbname: threadly
identity_key: k
redis_url: redis://localhost:6379/0
`

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	return dir
}

func TestMustLoad(t *testing.T) {
	cfg := MustLoad(writeConfig(t, validPublic, validPrivate))

	assert.Equal(t, 20, cfg.Public.ThreadsPerPage)
	assert.Equal(t, 100, cfg.Public.MaxPageSize)
	assert.Equal(t, 10*time.Minute, cfg.Public.ChildrenRepairInterval)
	assert.Equal(t, 30*time.Second, cfg.Public.ViewCacheTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Public.CorsOrigins)
	assert.Equal(t, "localhost", cfg.Private.Pg.Host)
	assert.Equal(t, 5432, cfg.Private.Pg.Port)
	assert.Equal(t, "k", cfg.IdentityKey())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Private.RedisURL)
}

func TestMustLoad_RequiredFields(t *testing.T) {
	// threads_per_page is intentionally missing
	public := "users_per_page: 20\nmax_page_size: 100\nmin_text_length: 3\nmax_text_length: 100\n"
	dir := writeConfig(t, public, validPrivate)

	assert.Panics(t, func() { _ = MustLoad(dir) })
}

func TestMustLoad_MissingIdentityKey(t *testing.T) {
	private := "pg:\n  host: localhost\n  port: 5432\n  user: u\n  dbname: d\n"
	dir := writeConfig(t, validPublic, private)

	assert.Panics(t, func() { _ = MustLoad(dir) })
}

func TestMustLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	assert.Panics(t, func() { _ = MustLoad(dir) })
}

func TestValidate_PageSizeBounds(t *testing.T) {
	cfg := MustLoad(writeConfig(t, validPublic, validPrivate))
	cfg.Public.MaxPageSize = 5

	assert.Error(t, cfg.Validate(), "max_page_size below the default page size must be rejected")
}
