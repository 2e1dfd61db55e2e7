// Package selector maps a project and drupal root to the vhost file of one
// of its environments.
package selector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment identifies one of the hosted copies of a project.
type Environment string

const (
	Live Environment = "live"
	Dev  Environment = "dev"
	Test Environment = "test"
)

// Environments lists every environment in lookup order.
var Environments = []Environment{Live, Dev, Test}

// ErrUnknownEnvironment is returned by ParseEnvironment for labels other
// than live, dev or test.
var ErrUnknownEnvironment = errors.New("unknown environment")

// ParseEnvironment converts a label into an Environment. The empty label is
// valid and means "not specified".
func ParseEnvironment(label string) (Environment, error) {
	switch e := Environment(strings.ToLower(strings.TrimSpace(label))); e {
	case "", Live, Dev, Test:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q (expected live, dev or test)", ErrUnknownEnvironment, label)
	}
}

// Selection is the vhost file chosen for a project environment.
type Selection struct {
	Environment Environment
	Path        string
}

// Selector picks the vhost file for a project.
type Selector struct {
	VhostDir string
	Project  string
}

// New returns a Selector for project with files under vhostDir.
func New(vhostDir, project string) *Selector {
	return &Selector{VhostDir: vhostDir, Project: project}
}

// FileName returns the vhost file name for env. The live file carries a
// 000_ prefix so Apache loads it first.
func (s *Selector) FileName(env Environment) string {
	name := fmt.Sprintf("%s_%s", s.Project, env)
	if env == Live {
		name = "000_" + name
	}
	return name
}

// Path returns the full path of the vhost file for env.
func (s *Selector) Path(env Environment) string {
	return filepath.Join(s.VhostDir, s.FileName(env))
}

// Exists reports whether the vhost file for env is present.
func (s *Selector) Exists(env Environment) bool {
	return s.fileExists(s.Path(env))
}

// AnyExists reports whether at least one of the three vhost files exists.
func (s *Selector) AnyExists() bool {
	for _, env := range Environments {
		if s.Exists(env) {
			return true
		}
	}
	return false
}

// Match finds the environment whose /<project>/<env>/ segment occurs in root.
// Checks run in the order live, dev, test.
func (s *Selector) Match(root string) (Environment, bool) {
	if s.Project == "" || root == "" {
		return "", false
	}
	candidate := filepath.ToSlash(root)
	if !strings.HasSuffix(candidate, "/") {
		candidate += "/"
	}
	for _, env := range Environments {
		if strings.Contains(candidate, "/"+s.Project+"/"+string(env)+"/") {
			return env, true
		}
	}
	return "", false
}

// Select picks the vhost file for a drupal root. When explicit is set the
// root is not consulted. Nothing is selected when none of the project's
// vhost files exist or the root matches no environment.
func (s *Selector) Select(root string, explicit Environment) (Selection, bool) {
	if !s.AnyExists() {
		return Selection{}, false
	}
	env := explicit
	if env == "" {
		var ok bool
		if env, ok = s.Match(root); !ok {
			return Selection{}, false
		}
	}
	return Selection{Environment: env, Path: s.Path(env)}, true
}

func (s *Selector) fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
