// Package ldap is the directory-access engine: connection lifecycle with
// TLS mode negotiation and reconnect, paged search (RFC 2696), entry
// modification with optional Relax-Rules, root DSE inspection and schema
// discovery.
//
// A Connection wraps one ordered LDAP request/response stream. A mutex is
// held for the duration of each exchange, so one Connection serves one
// logical operation at a time; open several Connections for concurrency.
//
// Certificate trust decisions are delegated to the trust package: when a
// trust store is supplied, TLS handshakes verify against it first and
// rejected certificates are captured for operator review.
package ldap
