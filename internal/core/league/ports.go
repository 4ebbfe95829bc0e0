package league

import "context"

// Source supplies the team records for one run.
// Satisfied by SampleSource, teams_csv.Source and *stats_http.Client.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]TeamRecord, error)
}
