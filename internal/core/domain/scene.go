package domain

// Scene is a named, ordered list of render states replayed against the cache.
type Scene struct {
	Name   string
	States []RenderState
}
