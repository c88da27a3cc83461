// Package models defines persistent entities for the token relay.
//
// The relay itself is stateless. The only persisted entity is [ExchangeRecord], an optional audit
// entry written after every token exchange attempt when the audit database is enabled. Records keep
// the outcome, the failure classification, the provider error code and the expiry that was granted.
// They never contain authorization codes or access tokens.
//
// All persistent entities implement the [Model] interface; the [Repository] interface defines the
// subset of data access operations the repositories package provides.
package models
