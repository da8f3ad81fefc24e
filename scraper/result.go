package scraper

import "github.com/use-agent/serpscout/models"

// Harvest is the outcome of one search run.
type Harvest struct {
	RunID   string
	Profile models.SessionProfile
	Result  *models.ResultSet
	Timing  models.TimingInfo

	// Challenges counts checks that found a challenge page.
	Challenges int

	// Fallback is true when the items came from the static re-fetch of
	// the landing page rather than the live scan.
	Fallback bool
}
