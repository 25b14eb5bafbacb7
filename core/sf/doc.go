// Package sf is a typed wrapper around golang.org/x/sync/singleflight.
//
// Concurrent calls with the same key share one execution of fn:
//
//	var refresh sf.Singleflight[routing.Table]
//	t, err := refresh.Do("refresh", func() (*routing.Table, error) {
//	    return source.Current(ctx)
//	})
package sf
