package blocksci

import (
	"github.com/couchbaselabs/logg"
	"github.com/dustin/httputil"
	"github.com/tleyden/go-couch"
)

type Processable interface {
	GetProcessingState() ProcessingState
	SetProcessingState(newState ProcessingState)
	RefreshFromDB(db couch.Database) error
}

// Attempt to transition the processable into newState, retrying the save
// on 409 conflicts until either we won the update or someone else already
// put it in that state.  Returns true if this call did the update.
func CasUpdateProcessingState(p Processable, newState ProcessingState, db couch.Database) (bool, error) {

	// if already has the newState, return false
	if p.GetProcessingState() == newState {
		logg.LogTo("PIPELINE", "Already in state: %v", p.GetProcessingState())
		return false, nil
	}

	for {
		p.SetProcessingState(newState)

		_, err := db.Edit(p)

		if err != nil {

			// if it failed with any other error than 409, return an error
			if !httputil.IsHTTPStatus(err, 409) {
				logg.LogTo("PIPELINE", "Update failed with non-409 error: %v", err)
				return false, err
			}

			// it failed with a 409 conflict, get the latest version
			if err := p.RefreshFromDB(db); err != nil {
				return false, err
			}

			// does it already have the new state (eg, someone else set it)?
			if p.GetProcessingState() == newState {
				logg.LogTo("PIPELINE", "Processing state already set")
				return false, nil
			}

			// no, so try updating state and saving again
			continue

		}

		// ensure that by the time we return, the processable has the
		// most recent version from the db
		if err := p.RefreshFromDB(db); err != nil {
			return false, err
		}

		// successfully saved, we are done
		logg.LogTo("PIPELINE", "Successfully saved: %+v", p)
		return true, nil

	}

}
