// Package strikeledger implements per-user, per-category strike counting with
// threshold-triggered timed suspensions and the expiry sweep that lifts them.
//
// Layering:
// - domain: warnings, ban records, the strike threshold policy
// - application: record-warning, manual ban/unban, standing queries, sweep worker
// - ports: ledger persistence, auth principal toggles, notifications, audit
// - adapters: memory, postgres and HTTP implementations
//
// Boundary notes:
// - RecordWarning is deliberately not idempotent. Callers own at-most-once delivery.
// - Count and insert run inside one repository transaction so concurrent
//   violations for the same user cannot under-count strikes.
package strikeledger
