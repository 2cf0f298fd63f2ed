// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Set-based rules, such as finalizing a game once every challenge is
// scored or picking each user's best training game, are expressed as
// single store operations so that they stay atomic in the database.
package store
