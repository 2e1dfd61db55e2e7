package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmagro/sitesettings/internal/vhost"
)

func TestSnapshot(t *testing.T) {
	src := map[string]string{
		DBName:     "mysite",
		SolrPath:   "",
		"UNRELATED": "ignored",
	}

	got := Snapshot(FromMap(src))
	assert.Equal(t, vhost.EnvMap{DBName: "mysite", SolrPath: ""}, got)
}

func TestFromOS(t *testing.T) {
	t.Setenv(DBUsername, "alice")
	t.Setenv(MemcachePrefix, "pfx")

	got := FromOS()
	assert.Equal(t, "alice", got[DBUsername])
	assert.Equal(t, "pfx", got[MemcachePrefix])
}

func TestParseDotEnv(t *testing.T) {
	text := `
# comment
db_username=alice
db_password="s3cr=t"
export db_name='mysite'
solr_path = /solr/mysite
memcache_prefix=live # trailing comment
`
	got, err := ParseDotEnv(text)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"db_username":     "alice",
		"db_password":     "s3cr=t",
		"db_name":         "mysite",
		"solr_path":       "/solr/mysite",
		"memcache_prefix": "live",
	}, got)
}

func TestParseDotEnvRejectsMalformedLine(t *testing.T) {
	_, err := ParseDotEnv("db_name=mysite\nbad-key=value\n")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		got, err := LoadDotEnv(filepath.Join(dir, ".env"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("present_does_not_touch_process_env", func(t *testing.T) {
		path := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(path, []byte("SITESETTINGS_TEST_ONLY=1\n"), 0o600))

		got, err := LoadDotEnv(path)
		require.NoError(t, err)
		assert.Equal(t, "1", got["SITESETTINGS_TEST_ONLY"])
		_, set := os.LookupEnv("SITESETTINGS_TEST_ONLY")
		assert.False(t, set)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.env")
		require.NoError(t, os.WriteFile(path, []byte("bad-key=value\n"), 0o600))

		_, err := LoadDotEnv(path)
		assert.Error(t, err)
	})
}

func TestMerge(t *testing.T) {
	first := FromMap(map[string]string{DBName: "from_file"})
	second := FromMap(map[string]string{DBName: "from_env", DBUsername: "alice"})

	got := Snapshot(Merge(first, second))
	assert.Equal(t, "from_file", got[DBName])
	assert.Equal(t, "alice", got[DBUsername])
}
