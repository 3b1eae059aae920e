package blocksci

import "fmt"

// Create a new job based on the Job Descriptor
func CreateJob(config Configuration, jobDescriptor JobDescriptor) (Runnable, error) {

	// Connect to DB
	db := config.DbConnection()

	// Fetch doc associated w/ job descriptor
	doc := &BlocksCiDoc{}
	err := db.Retrieve(jobDescriptor.DocIdToProcess, doc)
	if err != nil {
		return nil, err
	}

	// based on document type, create the correct Runnable
	switch doc.Type {
	case DOC_TYPE_PIPELINE_RUN:
		run := NewPipelineRun(config)
		if err := run.Find(doc.Id); err != nil {
			return nil, err
		}
		return NewPipelineRunner(config, run), nil
	}

	return nil, fmt.Errorf("Unable to create job for: %+v", jobDescriptor)

}
