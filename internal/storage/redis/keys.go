package redis

import (
	"fmt"
	"strings"

	"github.com/mcoot/clubhouse/internal/model"
)

// Key prefix for all club data
const keyPrefix = "club"

// Key generation functions for each entity type

// sequenceKey returns the counter used to allocate IDs of the given kind
func sequenceKey(kind string) string {
	return fmt.Sprintf("%s:seq:%s", keyPrefix, kind)
}

// accountKey returns the Redis key for an Account record
func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%d", keyPrefix, id)
}

// accountEmailIndexKey returns the Redis key for the email -> account_id index
func accountEmailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:account_email:%s", keyPrefix, normalizeEmail(email))
}

// accountsIndexKey returns the ZSET of all account IDs scored by ID
func accountsIndexKey() string {
	return fmt.Sprintf("%s:idx:accounts", keyPrefix)
}

// adminsIndexKey returns the SET of admin account IDs
func adminsIndexKey() string {
	return fmt.Sprintf("%s:idx:admins", keyPrefix)
}

// accountsByPlayerIndexKey returns the SET of accounts linked to a player
func accountsByPlayerIndexKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:accounts_by_player:%d", keyPrefix, id)
}

// playerKey returns the Redis key for a Player record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%d", keyPrefix, id)
}

// playerEmailIndexKey returns the Redis key for the email -> player_id index
func playerEmailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:player_email:%s", keyPrefix, normalizeEmail(email))
}

// playersIndexKey returns the ZSET of all player IDs
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// playerRegistrationsIndexKey returns the SET of entity refs a player is registered to
func playerRegistrationsIndexKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_registrations:%d", keyPrefix, id)
}

// eventKey returns the Redis key for an Event record
func eventKey(id model.EventID) string {
	return fmt.Sprintf("%s:event:%d", keyPrefix, id)
}

// eventsIndexKey returns the ZSET of all event IDs
func eventsIndexKey() string {
	return fmt.Sprintf("%s:idx:events", keyPrefix)
}

// tournamentKey returns the Redis key for a Tournament record
func tournamentKey(id model.TournamentID) string {
	return fmt.Sprintf("%s:tournament:%d", keyPrefix, id)
}

// tournamentsIndexKey returns the ZSET of all tournament IDs
func tournamentsIndexKey() string {
	return fmt.Sprintf("%s:idx:tournaments", keyPrefix)
}

// entityKey returns the record key of the referenced event or tournament
func entityKey(ref model.EntityRef) string {
	if ref.Kind == model.EntityTournament {
		return tournamentKey(model.TournamentID(ref.ID))
	}
	return eventKey(model.EventID(ref.ID))
}

// participantsKey returns the ZSET of player IDs registered to an entity, scored by registration order
func participantsKey(ref model.EntityRef) string {
	return fmt.Sprintf("%s:participants:%s:%d", keyPrefix, ref.Kind, ref.ID)
}

// newsKey returns the Redis key for a NewsItem record
func newsKey(id model.NewsID) string {
	return fmt.Sprintf("%s:news:%d", keyPrefix, id)
}

// newsIndexKey returns the ZSET of all news IDs
func newsIndexKey() string {
	return fmt.Sprintf("%s:idx:news", keyPrefix)
}

// newsByAuthorIndexKey returns the SET of news items written by an account
func newsByAuthorIndexKey(id model.AccountID) string {
	return fmt.Sprintf("%s:idx:news_by_author:%d", keyPrefix, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
