// Package taxonomy defines how shot records map onto decision tree paths:
// which shot categories form the first level and which binary attributes
// split each category below it.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/brensch/shottree/decisiontree"
	"github.com/brensch/shottree/shotlog"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrInvalid      = errors.New("taxonomy: invalid definition")
	ErrUnclassified = errors.New("taxonomy: shot matches no category")
)

// Category rules.
const (
	RuleThreePointer = "three_pointer"
	RuleTwoPointer   = "two_pointer"
	RuleShotDistLT   = "shot_dist_lt"
	RuleShotDistGTE  = "shot_dist_gte"
	RuleDefault      = "default"
)

// Category is one first-level branch.
type Category struct {
	Label     string  `yaml:"label" validate:"required"`
	Rule      string  `yaml:"rule" validate:"required,oneof=three_pointer two_pointer shot_dist_lt shot_dist_gte default"`
	Threshold float64 `yaml:"threshold" validate:"gte=0"`
}

// Attribute is a binary split: true when Column Op Threshold holds.
type Attribute struct {
	Name      string  `yaml:"name" validate:"required"`
	Column    string  `yaml:"column" validate:"required"`
	Op        string  `yaml:"op" validate:"required,oneof=lt lte gt gte eq"`
	Threshold float64 `yaml:"threshold"`
}

// Taxonomy is the fixed ordered set of categories and attributes that shapes
// a tree and turns shots into attribute sequences.
type Taxonomy struct {
	Categories []Category  `yaml:"categories" validate:"required,min=1,unique=Label,dive"`
	Attributes []Attribute `yaml:"attributes" validate:"unique=Name,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return t
}

// Load reads and validates a taxonomy file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML taxonomy.
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i := range t.Attributes {
		t.Attributes[i].Column = strings.ToUpper(strings.TrimSpace(t.Attributes[i].Column))
		t.Attributes[i].Op = strings.ToLower(strings.TrimSpace(t.Attributes[i].Op))
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks field constraints, that every attribute reads a numeric
// shot column, and that at most one category uses the default rule.
func (t *Taxonomy) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, a := range t.Attributes {
		if !slices.Contains(shotlog.NumericColumns, a.Column) {
			return fmt.Errorf("%w: attribute %q: unknown column %q", ErrInvalid, a.Name, a.Column)
		}
	}
	defaults := 0
	for _, c := range t.Categories {
		if c.Rule == RuleDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return fmt.Errorf("%w: %d categories use the default rule", ErrInvalid, defaults)
	}
	return nil
}

// Labels returns the category labels in tree order.
func (t *Taxonomy) Labels() []string {
	out := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		out[i] = c.Label
	}
	return out
}

// Build creates an empty tree for subject shaped by this taxonomy.
func (t *Taxonomy) Build(subject string) (*decisiontree.Tree, error) {
	return decisiontree.Build(subject, t.Labels(), len(t.Attributes))
}

// Classify returns the category label for a shot. Rules are tried in order
// with the default rule last, so a catch-all can sit anywhere in the list.
func (t *Taxonomy) Classify(s shotlog.Shot) (string, error) {
	fallback := ""
	for _, c := range t.Categories {
		if c.Rule == RuleDefault {
			fallback = c.Label
			continue
		}
		if c.matches(s) {
			return c.Label, nil
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrUnclassified
}

func (c Category) matches(s shotlog.Shot) bool {
	switch c.Rule {
	case RuleThreePointer:
		return s.PtsType == 3
	case RuleTwoPointer:
		return s.PtsType == 2
	case RuleShotDistLT:
		return float64(s.ShotDist) < c.Threshold
	case RuleShotDistGTE:
		return float64(s.ShotDist) >= c.Threshold
	}
	return false
}

// Eval reports whether the attribute holds for s.
func (a Attribute) Eval(s shotlog.Shot) bool {
	v, ok := s.Column(a.Column)
	if !ok {
		return false
	}
	switch a.Op {
	case "lt":
		return v < a.Threshold
	case "lte":
		return v <= a.Threshold
	case "gt":
		return v > a.Threshold
	case "gte":
		return v >= a.Threshold
	case "eq":
		return v == a.Threshold
	}
	return false
}

// Extract maps a shot to the attribute sequence a tree from Build accepts:
// category label, one outcome per attribute, then whether the shot was made.
func (t *Taxonomy) Extract(s shotlog.Shot) ([]decisiontree.Value, error) {
	label, err := t.Classify(s)
	if err != nil {
		return nil, err
	}
	seq := make([]decisiontree.Value, 0, len(t.Attributes)+2)
	seq = append(seq, decisiontree.Label(label))
	for _, a := range t.Attributes {
		seq = append(seq, decisiontree.Outcome(a.Eval(s)))
	}
	return append(seq, decisiontree.Outcome(s.Made)), nil
}

// Describe renders a tree path using attribute names, e.g.
// "Three, contested, not quick_touch".
func (t *Taxonomy) Describe(path []decisiontree.Value) string {
	parts := make([]string, 0, len(path))
	for i, v := range path {
		b, isOutcome := v.AsOutcome()
		if i == 0 || !isOutcome || i-1 >= len(t.Attributes) {
			parts = append(parts, v.String())
			continue
		}
		name := t.Attributes[i-1].Name
		if !b {
			name = "not " + name
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}
