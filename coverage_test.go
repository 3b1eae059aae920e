package blocksci

import (
	"strings"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestParseCoverageFragment(t *testing.T) {

	jsonString := `
	    {
	       "pass":"doctests",
	       "precision":"float32",
	       "files":{
	          "blocks/bricks.py":[1,2,5],
	          "blocks/graph.py":[10]
	       }
	    }`

	fragment, err := ParseCoverageFragment(strings.NewReader(jsonString))
	assert.True(t, err == nil)
	assert.Equals(t, fragment.Pass, TEST_PASS_DOCTESTS)
	assert.Equals(t, len(fragment.Files), 2)

}

func TestParseCoverageFragmentNoFiles(t *testing.T) {

	_, err := ParseCoverageFragment(strings.NewReader(`{"pass":"tests"}`))
	assert.True(t, err != nil)

}

func TestMergeCoverageFragments(t *testing.T) {

	doctests := &CoverageFragment{
		Pass: TEST_PASS_DOCTESTS,
		Files: map[string][]int{
			"blocks/bricks.py": {1, 2, 5},
			"blocks/graph.py":  {10},
		},
	}

	tests := &CoverageFragment{
		Pass: TEST_PASS_TESTS,
		Files: map[string][]int{
			"blocks/bricks.py": {2, 3},
			"blocks/serial.py": {7},
		},
	}

	report, err := MergeCoverageFragments("run", []*CoverageFragment{doctests, tests})
	assert.True(t, err == nil)
	assert.Equals(t, report.RunId, "run")
	assert.Equals(t, len(report.Passes), 2)

	// lines covered by either pass are unioned and sorted
	assert.DeepEquals(t, report.Files["blocks/bricks.py"], []int{1, 2, 3, 5})
	assert.DeepEquals(t, report.Files["blocks/graph.py"], []int{10})
	assert.DeepEquals(t, report.Files["blocks/serial.py"], []int{7})

	assert.Equals(t, report.Totals.Files, 3)
	assert.Equals(t, report.Totals.CoveredLines, 6)

}

func TestMergeCoverageFragmentsEmpty(t *testing.T) {

	_, err := MergeCoverageFragments("run", []*CoverageFragment{})
	assert.True(t, err != nil)

}
