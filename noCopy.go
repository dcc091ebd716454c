package bykenet

// noCopy can be embedded to get "go vet" to complain
// when a component view is copied instead of passed by pointer.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
