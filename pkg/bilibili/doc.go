// Package bilibili implements a minimal authenticated client for the
// Bilibili user-relationship API: own-profile lookup, paginated
// followings retrieval, pairwise relation queries, and the follow
// mutation. Responses arrive in the standard {code, message, data}
// envelope; non-zero codes are surfaced as typed errors carrying the
// numeric code so callers can branch on conditions such as
// "already following" (22014) or "user not found" (-404).
package bilibili
