package blocksci

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/couchbaselabs/logg"
)

// Saves and restores the state of a pipeline run so an interrupted run
// can be resumed from the last completed step instead of starting over.
// A dump is written after every step; on startup an existing dump is
// loaded back into the run and the run log records where it was loaded
// from.
type CheckpointManager struct {
	Configuration Configuration
	BlobStore     BlobStore
}

// The subset of run state that goes into a dump.
type checkpointDump struct {
	RunId             string       `json:"run-id"`
	StepRecords       []StepRecord `json:"step-records"`
	ArtifactsUrl      string       `json:"artifacts-url,omitempty"`
	CoverageReportUrl string       `json:"coverage-report-url,omitempty"`
}

func NewCheckpointManager(c Configuration, blobStore BlobStore) *CheckpointManager {
	return &CheckpointManager{
		Configuration: c,
		BlobStore:     blobStore,
	}
}

// Where the dump for this run is written.  Deterministic so the run log
// can record the destination before the dump is attempted.
func (m CheckpointManager) Destination(runId string) string {
	return filepath.Join(m.Configuration.RunWorkDirectory(runId), CHECKPOINT_FILENAME)
}

// Dump the run state to the work directory and mirror it to the blob
// store.
func (m CheckpointManager) Save(run *PipelineRun) error {

	dump := checkpointDump{
		RunId:             run.Id,
		StepRecords:       run.StepRecords,
		ArtifactsUrl:      run.ArtifactsUrl,
		CoverageReportUrl: run.CoverageReportUrl,
	}

	data, err := json.Marshal(dump)
	if err != nil {
		return fmt.Errorf("Error encoding checkpoint: %v", err)
	}

	destination := m.Destination(run.Id)
	if err := os.WriteFile(destination, data, 0644); err != nil {
		return fmt.Errorf("Error writing checkpoint %v: %v", destination, err)
	}

	blobPath := path.Join(run.Id, CHECKPOINT_FILENAME)
	options := BlobPutOptions{ContentType: "application/json"}
	if err := m.BlobStore.Put("", blobPath, bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("Error mirroring checkpoint to blob store: %v", err)
	}

	logg.LogTo("CHECKPOINT", "Saved run state to: %v", destination)

	return nil

}

// Load an existing dump into the run, if one exists.  The work
// directory is checked first, then the blob store mirror, so a run
// rescheduled onto a different worker still resumes.  Returns where the
// state was loaded from, or empty when there was no dump anywhere.
func (m CheckpointManager) Load(run *PipelineRun) (string, error) {

	source := m.Destination(run.Id)

	data, err := os.ReadFile(source)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("Error reading checkpoint %v: %v", source, err)
		}

		blobPath := path.Join(run.Id, CHECKPOINT_FILENAME)
		blobData, blobErr := getContentFromBlobStore(m.BlobStore, blobPath)
		if blobErr != nil {
			logg.LogTo("CHECKPOINT", "No dump found for run: %v", run.Id)
			return "", nil
		}
		data = blobData
		source = blobUri(blobPath)
	}

	dump := checkpointDump{}
	if err := json.Unmarshal(data, &dump); err != nil {
		return "", fmt.Errorf("Failed to load run state from %v: %v", source, err)
	}

	if dump.RunId != run.Id {
		return "", fmt.Errorf("Checkpoint %v belongs to run %v, not %v", source, dump.RunId, run.Id)
	}

	run.StepRecords = dump.StepRecords
	if dump.ArtifactsUrl != "" {
		run.ArtifactsUrl = dump.ArtifactsUrl
	}
	if dump.CoverageReportUrl != "" {
		run.CoverageReportUrl = dump.CoverageReportUrl
	}

	logg.LogTo("CHECKPOINT", "Loaded run state from: %v", source)

	return source, nil

}
