// Package adapter defines the contract a backend implements to be driven by
// the database facade, plus building blocks shared by the bundled adapters.
//
// A backend provides three types:
//
//   - Connection prepares statements and runs BEGIN/COMMIT/ROLLBACK.
//   - Statement receives bindings through the bind.Binder primitives and
//     steps through rows.
//   - Result exposes one row through typed getters that report NULL by
//     returning false.
//
// Adapters built on database/sql/driver can reuse Bindings for placeholder
// bookkeeping, Row for materialized results with checked conversions, Columns
// for shared column metadata and Handle for reference counted finalization.
package adapter
