// Package events publishes game lifecycle events (created, finalized, quit)
// to in-process handlers, such as the leaderboard cache invalidator and the
// metrics recorder, without the services knowing about them.
package events
