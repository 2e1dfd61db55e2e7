package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dmagro/sitesettings/internal/inventory"
	"github.com/dmagro/sitesettings/internal/vhost"
)

// InventoryView is the machine-readable form of an inventory report.
type InventoryView struct {
	Project      string                `json:"project" yaml:"project"`
	VhostDir     string                `json:"vhost_dir" yaml:"vhost_dir"`
	Environments []EnvironmentListItem `json:"environments" yaml:"environments"`
}

// EnvironmentListItem is one environment of an InventoryView.
type EnvironmentListItem struct {
	Environment string `json:"environment" yaml:"environment"`
	Path        string `json:"path" yaml:"path"`
	Exists      bool   `json:"exists" yaml:"exists"`
	Vars        int    `json:"vars" yaml:"vars"`
	DBComplete  bool   `json:"db_complete" yaml:"db_complete"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewInventoryView converts r.
func NewInventoryView(r inventory.Report) InventoryView {
	v := InventoryView{
		Project:      r.Project,
		VhostDir:     r.VhostDir,
		Environments: make([]EnvironmentListItem, 0, len(r.Environments)),
	}
	for _, s := range r.Environments {
		item := EnvironmentListItem{
			Environment: string(s.Environment),
			Path:        s.Path,
			Exists:      s.Exists,
			Vars:        len(s.Vars),
			DBComplete:  s.DBComplete,
		}
		if s.Err != nil {
			item.Error = s.Err.Error()
		}
		v.Environments = append(v.Environments, item)
	}
	return v
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// RenderYAML writes v as YAML.
func RenderYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return encoder.Close()
}

// MaskVars returns a copy of vars with password-like values masked.
func MaskVars(vars vhost.EnvMap) vhost.EnvMap {
	out := vars.Clone()
	for k := range out {
		if isSecretKey(k) {
			out[k] = maskedSecret
		}
	}
	return out
}
