package criteria

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden builds req and compares the statement text with
// testdata/golden/{req.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
func AssertGolden(t *testing.T, req *Request, c Contributor, comp StatementCompiler) *Result {
	t.Helper()

	res, err := Build(req, c, comp)
	if err != nil {
		t.Fatalf("build %s: %v", req.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, req.Name, []byte(res.Statement.Text()))
	return res
}
