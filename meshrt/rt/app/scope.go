package app

// frameScope collects the transient resources of one frame. Release runs
// the deferred functions in reverse order, once.
type frameScope struct {
	release []func()
}

func (s *frameScope) Defer(fn func()) {
	s.release = append(s.release, fn)
}

func (s *frameScope) Release() {
	for i := len(s.release) - 1; i >= 0; i-- {
		s.release[i]()
	}
	s.release = s.release[:0]
}
