// Package metrics defines backend-neutral instrument interfaces so the
// routing core can be instrumented without importing a metrics library.
package metrics

// Timer measures one operation. Call ObserveDuration when it completes:
//
//	defer m.RefreshDuration().ObserveDuration()
type Timer interface {
	ObserveDuration()
}
