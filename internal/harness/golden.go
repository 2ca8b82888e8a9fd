package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/typetrace/typetrace/internal/event"
)

// AssertGolden compares a compressed log against the scenario's golden
// file in testdata/golden/{name}.golden. The log is serialized as indented
// wire JSON so diffs read entry by entry.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, entries []event.Entry) error {
	t.Helper()

	data, err := event.MarshalLogIndent(entries)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
