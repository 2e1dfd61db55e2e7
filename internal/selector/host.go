package selector

import "os"

// Vhost directories used by the supported distributions.
const (
	DebianVhostDir = "/etc/apache2/sites-available/"
	RedHatVhostDir = "/etc/httpd/conf/vhosts/"
)

var hostMarkers = []struct {
	marker string
	dir    string
}{
	{"/etc/debian_version", DebianVhostDir},
	{"/etc/redhat-release", RedHatVhostDir},
}

// DefaultVhostDir returns the Apache vhost directory for the running host,
// falling back to the Debian layout when the distribution is not recognised.
func DefaultVhostDir() string {
	return vhostDirFor(func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	})
}

func vhostDirFor(exists func(string) bool) string {
	for _, m := range hostMarkers {
		if exists(m.marker) {
			return m.dir
		}
	}
	return DebianVhostDir
}

// ResolveRoot returns the first non-empty candidate. Callers pass the
// --root option, its -r alias and the working directory, in that order.
func ResolveRoot(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
