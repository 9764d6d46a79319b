package redis

import "fmt"

// Key prefix for all duel-server data
const keyPrefix = "skyduel"

// accountKey returns the Redis key for an Account
func accountKey(username string) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, username)
}

// scoreboardKey returns the Redis key for the score sorted set
func scoreboardKey() string {
	return fmt.Sprintf("%s:board:score", keyPrefix)
}

// killboardKey returns the Redis key for the kills sorted set
func killboardKey() string {
	return fmt.Sprintf("%s:board:kills", keyPrefix)
}

// historyKey returns the Redis key for the recent-match list
func historyKey() string {
	return fmt.Sprintf("%s:history", keyPrefix)
}
