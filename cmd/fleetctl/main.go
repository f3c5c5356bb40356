// Command fleetctl seeds, queries and reports on the fleet database.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := New().Execute(); err != nil {
		log.WithError(err).Error("fleetctl failed")
		os.Exit(1)
	}
}
