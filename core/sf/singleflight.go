package sf

import "golang.org/x/sync/singleflight"

// Singleflight deduplicates concurrent calls with the same key. The zero value
// is ready to use.
type Singleflight[T any] struct {
	group singleflight.Group
}

// Do executes fn for key unless a call for key is already in flight, in which
// case it waits for that call and returns its result. shared reports whether
// the result was handed to more than one caller.
func (s *Singleflight[T]) Do(key string, fn func() (*T, error)) (v *T, shared bool, err error) {
	out, err, shared := s.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, shared, err
	}
	return out.(*T), shared, nil
}

// Forget makes the next Do for key execute fn even if a call is in flight.
func (s *Singleflight[T]) Forget(key string) { s.group.Forget(key) }
