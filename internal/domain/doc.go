// Package domain contains the core business entities of the HER2 training
// game: users, games (sessions), challenges, image cores and leaderboard
// entries, together with the error taxonomy shared by every layer above it.
// It is independent of any specific infrastructure or delivery mechanism.
package domain
