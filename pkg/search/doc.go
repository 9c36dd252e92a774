// Package search keeps the user's recent and saved searches, persisted to
// durable client storage. Recent queries are capped at the 50 most recent;
// saved searches are named, replace-on-save, and capped at 20.
package search
