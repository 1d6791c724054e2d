// Package store implements the domain stores: thin CRUD layers over the
// namespaced keys of the kv store, one key per collection.
package store

// KeyPrefix namespaces every collection key owned by this application.
const KeyPrefix = "matkarnia:"

// Collection keys.
const (
	keyListings      = KeyPrefix + "listings"
	keyCarts         = KeyPrefix + "carts"
	keyOrders        = KeyPrefix + "orders"
	keyPassports     = KeyPrefix + "passports"
	keyPayments      = KeyPrefix + "payments"
	keyBreeders      = KeyPrefix + "breeders"
	keyUsers         = KeyPrefix + "users"
	keyReviews       = KeyPrefix + "reviews"
	keyQuestions     = KeyPrefix + "questions"
	keyAudit         = KeyPrefix + "audit"
	keyJobs          = KeyPrefix + "jobs"
	keyNotifications = KeyPrefix + "notifications"
	keySeenEvents    = KeyPrefix + "webhook_seen"
	keyRevokedTokens = KeyPrefix + "revoked_tokens"
	keySettings      = KeyPrefix + "settings"
)
