package main

import (
	"encoding/json"
	"os"

	"github.com/alecthomas/kingpin"
	"github.com/couchbaselabs/logg"
	bc "github.com/cosmoharrigan/blocks"
)

/*
Tool for running a single pipeline leg on a development box, without the
REST server or any queue in the picture.
*/

var (
	app = kingpin.New("blocks-runner", "A command-line tool for running pipeline legs locally.")
	run = app.Command("run", "Run one leg of the test matrix start to finish")

	specFile  = run.Flag("spec-file", "Path to a pipeline spec json file").Required().String()
	python    = run.Flag("python", "Python version for this leg").Default("2.7").String()
	precision = run.Flag("precision", "Floating point precision, float32 or float64").Default(bc.PRECISION_FLOAT32).String()
	runId     = run.Flag("run-id", "Resume the run with this id from its last checkpoint").String()
	workDir   = run.Flag("work-dir", "Working directory for run workspaces").String()
	dataPath  = run.Flag("data-path", "Directory holding the staged dataset").String()
	blobStore = run.Flag("blob-store-url", "Blob store URL").String()
)

func init() {
	bc.EnableAllLogKeys()
}

func main() {
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case "run":
		doRun()
	default:
		kingpin.FatalUsage("Invalid / missing command")
	}
}

func doRun() {

	config := *(bc.NewDefaultConfiguration())
	if *workDir != "" {
		config.WorkDirectory = *workDir
	}
	if *dataPath != "" {
		config.DataPath = *dataPath
	}
	if *blobStore != "" {
		config.BlobStoreUrl = *blobStore
	}

	spec, err := loadSpec(*specFile)
	if err != nil {
		logg.LogFatal("Error loading spec file: %v", err)
		return
	}

	leg := bc.MatrixLeg{
		PythonVersion: *python,
		Precision:     *precision,
	}

	pipelineRun, err := bc.RunPipelineOnce(config, spec, leg, *runId)
	if err != nil {
		logg.LogFatal("Pipeline run failed: %v", err)
		return
	}

	logg.LogTo("CLI", "Run %v finished with state: %v", pipelineRun.Id, pipelineRun.ProcessingState)
	for _, record := range pipelineRun.StepRecords {
		logg.LogTo("CLI", "  %v: %v", record.Name, record.Status)
	}

}

func loadSpec(path string) (bc.PipelineSpec, error) {

	spec := *(bc.NewPipelineSpec())

	file, err := os.Open(path)
	if err != nil {
		return spec, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&spec); err != nil {
		return spec, err
	}

	if len(spec.Dataset.Sources) == 0 {
		spec.Dataset = bc.NewMnistDatasetSpec()
	}

	return spec, nil

}
