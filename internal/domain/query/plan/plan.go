package plan

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/provquery/internal/domain/query/vector"
)

// MaxOps is the maximum number of operations in one plan.
const MaxOps = 256

var (
	// ErrInvalidPlan signals a malformed plan.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrUnknownVector signals a vector token outside the supported set.
	ErrUnknownVector = errors.New("unknown vector")
)

// Kind is the type of a plan operation.
type Kind string

// Operation kinds.
const (
	KindFilter      Kind = "filter"
	KindOr          Kind = "or"
	KindWith        Kind = "with"
	KindRemove      Kind = "remove"
	KindDelete      Kind = "delete"
	KindVector      Kind = "vector"
	KindClearVector Kind = "clear_vector"
	KindLocation    Kind = "location"
	KindParam       Kind = "param"
)

// Op is a single builder call expressed as data.
type Op struct {
	Kind        Kind                `yaml:"op" json:"op"`
	Field       string              `yaml:"field,omitempty" json:"field,omitempty"`
	Values      []string            `yaml:"values,omitempty" json:"values,omitempty"`
	Conjunction string              `yaml:"conjunction,omitempty" json:"conjunction,omitempty"`
	Groups      []map[string]string `yaml:"groups,omitempty" json:"groups,omitempty"`
	Place       string              `yaml:"place,omitempty" json:"place,omitempty"`
	Distance    float64             `yaml:"distance,omitempty" json:"distance,omitempty"`
	Name        string              `yaml:"name,omitempty" json:"name,omitempty"`
	Value       any                 `yaml:"value,omitempty" json:"value,omitempty"`
}

// Plan is an ordered list of builder operations.
type Plan struct {
	Ops []Op `yaml:"ops" json:"ops"`
}

// Decode parses a YAML (or JSON) plan and validates it.
func Decode(data []byte) (Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Validate checks every operation. Errors wrap ErrInvalidPlan or ErrUnknownVector.
func (p Plan) Validate() error {
	if len(p.Ops) > MaxOps {
		return fmt.Errorf("%w: too many operations (max %d)", ErrInvalidPlan, MaxOps)
	}
	for i := range p.Ops {
		if err := p.Ops[i].Validate(); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, p.Ops[i].Kind, err)
		}
	}
	return nil
}

// Validate checks that the operation carries the arguments its kind needs.
func (o *Op) Validate() error {
	switch o.Kind {
	case KindFilter, KindRemove:
		if o.Field == "" {
			return fmt.Errorf("%w: field is required", ErrInvalidPlan)
		}
		if len(o.Values) == 0 {
			return fmt.Errorf("%w: at least one value is required", ErrInvalidPlan)
		}
	case KindOr:
		if len(o.Values) == 0 {
			return fmt.Errorf("%w: at least one value is required", ErrInvalidPlan)
		}
	case KindWith:
		if len(o.Groups) == 0 {
			return fmt.Errorf("%w: at least one group is required", ErrInvalidPlan)
		}
	case KindDelete:
		if o.Field == "" {
			return fmt.Errorf("%w: field is required", ErrInvalidPlan)
		}
	case KindVector:
		if !vector.Field(o.Field).IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownVector, o.Field)
		}
		if o.Value == nil || fmt.Sprint(o.Value) == "" {
			return fmt.Errorf("%w: vector value is required", ErrInvalidPlan)
		}
	case KindClearVector:
	case KindLocation:
		if o.Place == "" {
			return fmt.Errorf("%w: place is required", ErrInvalidPlan)
		}
		if o.Distance < 0 {
			return fmt.Errorf("%w: distance must be non-negative", ErrInvalidPlan)
		}
	case KindParam:
		if o.Name == "" {
			return fmt.Errorf("%w: param name is required", ErrInvalidPlan)
		}
		if o.Value == nil {
			return fmt.Errorf("%w: param value is required", ErrInvalidPlan)
		}
	case "":
		return fmt.Errorf("%w: op is required", ErrInvalidPlan)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidPlan, o.Kind)
	}
	return nil
}
