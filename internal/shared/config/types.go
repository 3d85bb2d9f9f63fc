package config

import "fmt"

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RelationPolicy controls what happens to relation links whose target item is
// being removed.
type RelationPolicy string

const (
	// RelationPolicyDetach removes the link rows and keeps the linked items.
	RelationPolicyDetach RelationPolicy = "detach"
	// RelationPolicyCascade removes the items that depend on the removed one.
	RelationPolicyCascade RelationPolicy = "cascade"
)

type WorkflowConfig struct {
	RelationPolicy RelationPolicy `mapstructure:"relation_policy"`
}

func (w *WorkflowConfig) Validate() error {
	switch w.RelationPolicy {
	case RelationPolicyDetach, RelationPolicyCascade, "":
		return nil
	}
	return fmt.Errorf("unknown relation policy: %s", w.RelationPolicy)
}
