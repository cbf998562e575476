// Package livedata provides the observable state primitives shared by the
// view-models: value cells, consume-once events, dispatchers for the
// asynchronous step, and a cancellable scope that owns pending work.
//
// Cells notify observers synchronously on every Set, so a sequence such as
// false, true, false is seen as three distinct values. Events hold at most one
// pending value and hand it out exactly once.
//
// Typical Usage
//
//	loading := livedata.NewCell(false)
//	stop := loading.Observe(func(v bool) { fmt.Println("loading:", v) })
//	defer stop()
//
//	errs := livedata.NewEvent[string]()
//	errs.Emit("boom")
//	msg, ok := errs.Consume() // "boom", true
//	_, ok = errs.Consume()    // ok == false
package livedata
