package blocksci

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/couchbaselabs/logg"
	"github.com/gin-gonic/gin"
	"github.com/tleyden/go-couch"
)

const (
	MIDDLEWARE_KEY_DB   = "db"
	MIDDLEWARE_KEY_USER = "user"
)

// Gin middleware to connect to the Sync Gw database given in the
// dbUrl parameter, and set the connection object into the context.
// This creates a new connection for each request, which is ultra-conservative
// in case the connection object isn't safe to use among multiple goroutines.
// If it becomes a bottleneck, it's easy to create another middleware that
// re-uses an existing connection.
func DbConnector(dbUrl string) gin.HandlerFunc {

	return func(c *gin.Context) {

		// make sure the db url does not have a trailing slash
		if strings.HasSuffix(dbUrl, "/") {
			err := fmt.Errorf("dbUrl must not have trailing slash: %v", dbUrl)
			logg.LogError(err)
			c.AbortWithError(500, err)
			return
		}

		db, err := couch.Connect(dbUrl)
		if err != nil {
			err = fmt.Errorf("Error %v | dbUrl: %v", err, dbUrl)
			logg.LogError(err)
			c.AbortWithError(500, err)
			return
		}

		c.Set(MIDDLEWARE_KEY_DB, db)

		c.Next()

	}

}

// Gin middleware to authenticate the user specified in the Basic Auth
// Authorization header.  It will lookup the user in the database (this
// middleware requires the use of the DbConnector middleware to have run
// before it), and then add to the Gin Context.
func DbAuthRequired() gin.HandlerFunc {

	return func(c *gin.Context) {

		db := c.MustGet(MIDDLEWARE_KEY_DB).(couch.Database)

		auth := strings.SplitN(c.Request.Header.Get("Authorization"), " ", 2)

		if len(auth) != 2 || auth[0] != "Basic" {
			err := errors.New("bad syntax in auth header")
			c.AbortWithError(401, err)
			return
		}

		payload, _ := base64.StdEncoding.DecodeString(auth[1])
		pair := strings.SplitN(string(payload), ":", 2)

		if len(pair) != 2 {
			err := errors.New("expected user:pass in auth header")
			c.AbortWithError(401, err)
			return
		}

		username := pair[0]
		password := pair[1]

		user, err := AuthenticateUser(db, username, password)
		if err != nil {
			msg := fmt.Sprintf("Failed to authenticate user in DB: %v", err)
			c.AbortWithError(401, errors.New(msg))
			return
		}

		c.Set(MIDDLEWARE_KEY_USER, *user)

		c.Next()

	}

}
