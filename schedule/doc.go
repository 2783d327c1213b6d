// Package schedule implements deferred promotion delivery.
//
// A scheduled send is persisted immediately and, when its due time falls
// within the scheduler's horizon, an in-process timer is armed to deliver
// it through the broadcast sender. Timers are best-effort by design: if
// the process exits before the due time the record stays "scheduled" and
// is not resumed on restart.
//
// Stores implement the Store interface with an explicit Init/Close
// lifecycle; FileStore persists the whole list as one JSON blob,
// SQLiteStore keeps one row per record.
package schedule
