package blocksci

import (
	"errors"
	"fmt"

	"github.com/couchbaselabs/logg"
	"github.com/gin-gonic/gin"
	"github.com/tleyden/go-couch"
)

type EndpointContext struct {
	Configuration Configuration
}

// Creates a new user
func (e EndpointContext) CreateUserEndpoint(c *gin.Context) {

	db := c.MustGet(MIDDLEWARE_KEY_DB).(couch.Database)

	userToCreate := NewUser()
	if err := c.ShouldBindJSON(userToCreate); err != nil {
		c.AbortWithError(400, fmt.Errorf("Unable to parse user params: %v", err))
		return
	}

	// make sure this user isn't already in the db
	existingUser := NewUser()
	err := db.Retrieve(userToCreate.DocId(), existingUser)
	if err == nil {
		c.AbortWithError(409, fmt.Errorf("User already exists: %v", existingUser.Username))
		return
	}

	logg.LogTo("REST", "Did not find existing user, ok to create")

	// create a new user and return 201
	newUser := NewUserFromUser(*userToCreate)
	_, _, err = db.InsertWith(newUser, newUser.DocId())
	if err != nil {
		c.AbortWithError(500, fmt.Errorf("Error creating new user: %v", err))
		return
	}

	c.String(201, "")

}

// Registers a pipeline spec
func (e EndpointContext) CreatePipelineSpecEndpoint(c *gin.Context) {

	user := c.MustGet(MIDDLEWARE_KEY_USER).(User)
	db := c.MustGet(MIDDLEWARE_KEY_DB).(couch.Database)
	logg.LogTo("REST", "user: %v", user.Username)

	spec := NewPipelineSpec()

	if err := c.ShouldBindJSON(spec); err != nil {
		c.AbortWithError(400, fmt.Errorf("Invalid pipeline spec: %v", err))
		return
	}

	if spec.Dataset.Name == "" {
		spec.Dataset = NewMnistDatasetSpec()
	}

	spec, err := spec.Insert(db)
	if err != nil {
		c.AbortWithError(500, err)
		return
	}

	c.JSON(201, *spec)

}

// Kicks off a build: expands the spec's matrix and creates one pending
// pipeline run per leg.  The changes listener picks the pending runs
// up and schedules them.
func (e EndpointContext) CreatePipelineRunsEndpoint(c *gin.Context) {

	user := c.MustGet(MIDDLEWARE_KEY_USER).(User)
	db := c.MustGet(MIDDLEWARE_KEY_DB).(couch.Database)
	logg.LogTo("REST", "user: %v", user.Username)

	var body struct {
		SpecId string `json:"spec-id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithError(400, fmt.Errorf("Invalid input: %v", err))
		return
	}

	spec := &PipelineSpec{}
	if err := db.Retrieve(body.SpecId, spec); err != nil {
		c.AbortWithError(404, fmt.Errorf("Didn't retrieve: %v - %v", body.SpecId, err))
		return
	}

	legs := spec.MatrixLegs()
	if len(legs) == 0 {
		c.AbortWithError(400, errors.New("Spec has an empty matrix"))
		return
	}

	runs := []PipelineRun{}
	for _, leg := range legs {
		run := NewPipelineRun(e.Configuration)
		run.SpecId = spec.Id
		run.PythonVersion = leg.PythonVersion
		run.Precision = leg.Precision
		run.ProcessingState = Pending

		if err := run.Insert(); err != nil {
			c.AbortWithError(500, err)
			return
		}
		runs = append(runs, *run)
	}

	c.JSON(201, gin.H{"runs": runs})

}

// Fetch the state of a pipeline run, including the run log
func (e EndpointContext) GetPipelineRunEndpoint(c *gin.Context) {

	db := c.MustGet(MIDDLEWARE_KEY_DB).(couch.Database)

	runId := c.Param("run-id")

	run := &PipelineRun{}
	if err := db.Retrieve(runId, run); err != nil {
		c.AbortWithError(404, fmt.Errorf("Didn't retrieve: %v - %v", runId, err))
		return
	}

	c.JSON(200, *run)

}
