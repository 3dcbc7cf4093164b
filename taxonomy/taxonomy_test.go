package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dt "github.com/brensch/shottree/decisiontree"
	"github.com/brensch/shottree/shotlog"
)

func TestDefault(t *testing.T) {
	tax := Default()
	assert.Equal(t, []string{"Three", "Mid-range", "Layup"}, tax.Labels())
	require.Len(t, tax.Attributes, 3)

	tree, err := tax.Build("stephen curry")
	require.NoError(t, err)
	assert.Len(t, tree.LeafPairs(), 3*8)
}

func TestClassify(t *testing.T) {
	tax := Default()
	cases := []struct {
		shot shotlog.Shot
		want string
	}{
		{shotlog.Shot{PtsType: 3, ShotDist: 24.5}, "Three"},
		{shotlog.Shot{PtsType: 2, ShotDist: 2.1}, "Layup"},
		{shotlog.Shot{PtsType: 2, ShotDist: 5.0}, "Mid-range"},
		{shotlog.Shot{PtsType: 2, ShotDist: 17.3}, "Mid-range"},
	}
	for _, c := range cases {
		got, err := tax.Classify(c.shot)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "shot %+v", c.shot)
	}

	noDefault, err := Parse([]byte(`
categories:
  - {label: Three, rule: three_pointer}
`))
	require.NoError(t, err)
	_, err = noDefault.Classify(shotlog.Shot{PtsType: 2})
	assert.ErrorIs(t, err, ErrUnclassified)
}

func TestExtract(t *testing.T) {
	tax := Default()
	shot := shotlog.Shot{PtsType: 3, CloseDefDist: 1.2, TouchTime: 4.0, Dribbles: 2, Made: true}

	seq, err := tax.Extract(shot)
	require.NoError(t, err)
	want := []dt.Value{dt.Label("Three"), dt.Outcome(true), dt.Outcome(false), dt.Outcome(true), dt.Outcome(true)}
	if diff := cmp.Diff(want, seq); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}

	tree, err := tax.Build("p")
	require.NoError(t, err)
	ok, err := tree.Ingest(seq)
	require.NoError(t, err)
	assert.True(t, ok)

	best, err := tree.BestRatioPath()
	require.NoError(t, err)
	assert.Equal(t, 1.0, best.Ratio)
	assert.Equal(t, "Three, contested, not quick_touch, off_dribble", tax.Describe(best.Path))
}

func TestAttributeOps(t *testing.T) {
	s := shotlog.Shot{Dribbles: 2}
	for op, want := range map[string]bool{"lt": false, "lte": true, "gt": false, "gte": true, "eq": true} {
		a := Attribute{Name: "x", Column: shotlog.ColDribbles, Op: op, Threshold: 2}
		assert.Equal(t, want, a.Eval(s), op)
	}
	assert.False(t, Attribute{Column: "PLAYER_NAME", Op: "eq"}.Eval(s))
}

func TestParseInvalid(t *testing.T) {
	cases := map[string]string{
		"no categories": `attributes: []`,
		"bad rule":      "categories:\n  - {label: A, rule: dunk}\n",
		"dup labels":    "categories:\n  - {label: A, rule: default}\n  - {label: A, rule: three_pointer}\n",
		"two defaults":  "categories:\n  - {label: A, rule: default}\n  - {label: B, rule: default}\n",
		"bad column":    "categories:\n  - {label: A, rule: default}\nattributes:\n  - {name: x, column: HEIGHT, op: lt, threshold: 1}\n",
		"bad op":        "categories:\n  - {label: A, rule: default}\nattributes:\n  - {name: x, column: DRIBBLES, op: near, threshold: 1}\n",
		"dup attrs":     "categories:\n  - {label: A, rule: default}\nattributes:\n  - {name: x, column: DRIBBLES, op: lt}\n  - {name: x, column: SHOT_DIST, op: lt}\n",
		"not yaml":      "categories: [",
	}
	for name, in := range cases {
		_, err := Parse([]byte(in))
		assert.ErrorIs(t, err, ErrInvalid, name)
	}
}

func TestParseEveryNumericColumn(t *testing.T) {
	for _, col := range shotlog.NumericColumns {
		in := "categories:\n  - {label: A, rule: default}\nattributes:\n  - {name: x, column: " + col + ", op: gte, threshold: 1}\n"
		tax, err := Parse([]byte(in))
		require.NoError(t, err, col)
		assert.Equal(t, col, tax.Attributes[0].Column)
	}
}

func TestLoadNormalizesCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - {label: Any, rule: default}
attributes:
  - {name: long, column: shot_dist, op: GTE, threshold: 20}
`), 0o644))

	tax, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, shotlog.ColShotDist, tax.Attributes[0].Column)
	assert.True(t, tax.Attributes[0].Eval(shotlog.Shot{ShotDist: 23}))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
