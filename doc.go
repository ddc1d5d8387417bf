// Package framegov multiplexes many independent visual-update producers onto
// a single per-tick host callback, enforcing a shared frame-time budget,
// priority ordering, and adaptive throttling so that no single producer can
// starve the others or blow a frame-time target.
//
// # Architecture
//
// The package is built around a [Scheduler] that owns one subscription to a
// [TickSource] (the host's per-frame callback, e.g. a display refresh timer)
// and, each tick, sequences:
//
//   - [MasterClock] advancement (pausable, time-scalable timeline)
//   - budget-ordered execution of registered consumers
//   - per-consumer adaptive interval governance (multi-second horizon)
//   - global performance-mode evaluation (Quality/Performance hysteresis)
//   - a single flush of the optional [Flusher] sink
//
// Consumers implement [Consumer] (one required Tick method) and may
// additionally implement [ModeObserver] to be notified of performance-mode
// transitions, or [Destroyer] to be torn down by [Scheduler.Destroy].
//
// # Execution Model
//
// Execution is strictly single-threaded and cooperative: all consumer
// callbacks run synchronously, back-to-back, on the tick goroutine. There is
// no preemption; the budget model is advisory and measured. A slow consumer
// delays the remainder of its tick and is corrected after the fact by the
// adaptive governor and the performance-mode controller.
//
// Within one tick, Critical consumers always precede Normal, which always
// precede Background, with registration order as a stable tie-break. When the
// shared budget is exhausted only Background consumers are skipped;
// Critical and Normal work degrades the frame rather than starving.
//
// # Error Isolation
//
// A panic inside a consumer's Tick is recovered, logged with the consumer
// name, and permanently disables that consumer. The scheduler itself never
// crashes from consumer faults; the tick continues with the remaining
// consumers unaffected.
package framegov
