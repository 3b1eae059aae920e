package blocksci

import (
	"fmt"

	"github.com/tleyden/go-couch"
)

// A pipeline spec pins down everything a run needs: the matrix axes,
// the pinned dependency lists, the commands for each phase and the
// benchmark dataset sources with their expected digests.  Runs are
// created from a spec, one per matrix leg.
type PipelineSpec struct {
	BlocksCiDoc
	Name             string      `json:"name" binding:"required"`
	PythonVersions   []string    `json:"python-versions" binding:"required"`
	Precisions       []string    `json:"precisions"`
	CondaPackages    []string    `json:"conda-packages"`
	PipPackages      []string    `json:"pip-packages"`
	InstallCommand   []string    `json:"install-command"`
	DoctestCommand   []string    `json:"doctest-command"`
	UnitTestCommand  []string    `json:"unit-test-command"`
	VizServerCommand []string    `json:"viz-server-command"`
	RequiredTools    []string    `json:"required-tools"`
	Dataset          DatasetSpec `json:"dataset"`
}

// The benchmark dataset a spec depends on.  Sources are filenames
// relative to the configured mirror url.
type DatasetSpec struct {
	Name    string          `json:"name"`
	Sources []DatasetSource `json:"sources"`
}

type DatasetSource struct {
	Filename string `json:"filename"`
	Sha256   string `json:"sha256"`

	// one of: train-images, train-labels, test-images, test-labels
	Role string `json:"role"`
}

// One leg of the test matrix
type MatrixLeg struct {
	PythonVersion string
	Precision     string
}

// Create a new pipeline spec.  If you don't use this, you must set the
// embedded BlocksCiDoc Type field.
func NewPipelineSpec() *PipelineSpec {
	return &PipelineSpec{
		BlocksCiDoc: BlocksCiDoc{Type: DOC_TYPE_PIPELINE_SPEC},
	}
}

// The mnist dataset as published on the standard mirrors, with the
// digests of the gzipped idx archives.
func NewMnistDatasetSpec() DatasetSpec {
	return DatasetSpec{
		Name: "mnist",
		Sources: []DatasetSource{
			{
				Filename: "train-images-idx3-ubyte.gz",
				Sha256:   "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
				Role:     "train-images",
			},
			{
				Filename: "train-labels-idx1-ubyte.gz",
				Sha256:   "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
				Role:     "train-labels",
			},
			{
				Filename: "t10k-images-idx3-ubyte.gz",
				Sha256:   "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
				Role:     "test-images",
			},
			{
				Filename: "t10k-labels-idx1-ubyte.gz",
				Sha256:   "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
				Role:     "test-labels",
			},
		},
	}
}

// Expand the matrix axes into the list of legs.  Every python version
// is crossed with every precision, and each leg runs independently.
func (s PipelineSpec) MatrixLegs() []MatrixLeg {

	precisions := s.Precisions
	if len(precisions) == 0 {
		precisions = []string{PRECISION_FLOAT32, PRECISION_FLOAT64}
	}

	legs := []MatrixLeg{}
	for _, pythonVersion := range s.PythonVersions {
		for _, precision := range precisions {
			legs = append(legs, MatrixLeg{
				PythonVersion: pythonVersion,
				Precision:     precision,
			})
		}
	}
	return legs

}

func (s PipelineSpec) Insert(db couch.Database) (*PipelineSpec, error) {

	id, _, err := db.Insert(s)
	if err != nil {
		err := fmt.Errorf("Error inserting pipeline spec: %+v.  Err: %v", s, err)
		return nil, err
	}

	// load the spec back from the db (so we have id/rev fields)
	spec := &PipelineSpec{}
	err = db.Retrieve(id, spec)
	if err != nil {
		err := fmt.Errorf("Error fetching pipeline spec: %v.  Err: %v", id, err)
		return nil, err
	}

	return spec, nil

}
