package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	values := map[string]string{"project": "myproj", "memcache_prefix": "myproj_live"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "braced", in: "000_${project}_live", want: "000_myproj_live"},
		{name: "bare", in: "$project", want: "myproj"},
		{name: "unknown_left_intact", in: "${username} $conf['x']", want: "${username} $conf['x']"},
		{name: "escaped_dollar", in: "cost: $$5", want: "cost: $5"},
		{name: "lone_dollar", in: "a $ b $1", want: "a $ b $1"},
		{name: "php_server_array", in: "$_SERVER[db_name] ${memcache_prefix}", want: "$_SERVER[db_name] myproj_live"},
		{name: "no_tokens", in: "plain", want: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.in, values))
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("${b} $a ${b} $$ $1")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMissing(t *testing.T) {
	got := Missing("${project} ${vhost_root} ${project} $conf", map[string]string{"project": "p"})
	assert.Equal(t, []string{"vhost_root"}, got)
}

func TestBuiltins(t *testing.T) {
	names := Builtins()
	assert.ElementsMatch(t, []string{
		"drupal6.settings.php",
		"drupal7.settings.php",
		"drush.alias.drushrc.php",
		"vhost.conf",
	}, names)

	text, err := Builtin("drupal6.settings.php")
	require.NoError(t, err)

	out := Render(text, map[string]string{"project": "myproj", "vhost_root": "/etc/apache2/sites-available/"})
	assert.Contains(t, out, "'000_myproj_live'")
	assert.Contains(t, out, "/myproj\\/live/")
	assert.Empty(t, Missing(out, nil))
	assert.True(t, strings.HasPrefix(out, "<?php"))

	_, err = Builtin("nope")
	assert.Error(t, err)
}

func TestBuiltinVhostRoundTrip(t *testing.T) {
	text, err := Builtin("vhost.conf")
	require.NoError(t, err)

	out := Render(text, map[string]string{
		"server_name":     "myproj.example.com",
		"server_alias":    "www.myproj.example.com",
		"doc_root":        "/var/www/myproj/live",
		"db_username":     "alice",
		"db_password":     "secret",
		"db_name":         "mysite",
		"solr_path":       "/solr/mysite",
		"memcache_prefix": "myproj_live",
	})
	assert.Empty(t, Missing(out, nil))
	assert.Contains(t, out, "SetEnv db_name mysite")
}
