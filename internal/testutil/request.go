package testutil

// FixedRequestIDs stamps every query with the same request id.
//
// This keeps golden snapshots byte-identical across runs. Unlike
// search.FixedGenerator, which hands out ids in sequence, this generator never
// runs out.
type FixedRequestIDs struct {
	id string
}

// NewFixedRequestIDs creates a generator for id. An empty id becomes
// "test-request-default".
func NewFixedRequestIDs(id string) *FixedRequestIDs {
	if id == "" {
		id = "test-request-default"
	}
	return &FixedRequestIDs{id: id}
}

// Generate returns the fixed id.
func (g *FixedRequestIDs) Generate() string {
	return g.id
}
