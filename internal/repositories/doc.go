// Package repositories implements SQLite persistence for the relay's audit trail.
//
// [ExchangeRepository] stores one row per token exchange attempt in the exchanges table created by the
// embedded migrations in the shared package. It implements [models.Repository] for [models.ExchangeRecord]
// and doubles as the exchange service's Recorder, so `tokenrelay serve` can persist attempts when the
// database is enabled.
//
// Rows hold the outcome, error kind, provider error code, token lifetime and timing of an attempt.
// Authorization codes and tokens are never written.
package repositories
