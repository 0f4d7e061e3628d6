// Package audittrail implements the append-only moderation audit log inside Warden.
//
// Layering:
// - domain: entry shape, action tags, errors
// - application: append/list/export use cases over explicit ports
// - ports: persistence and clock boundaries
// - adapters: memory, postgres and HTTP implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - The core only ever appends. Mutation and deletion are denied at the
//   storage access-control layer, never offered through ports.
package audittrail
