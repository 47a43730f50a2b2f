// Package store persists tile to zone correspondences so they are computed
// once per region.
//
// Two backends implement spatial.Store:
//
//   - CSVStore keeps every region in one comma separated file with a
//     city,tile,iris header, the layout of the published matching table.
//   - SQLStore keeps them in a correspondence table through sqlx, on
//     SQLite or PostgreSQL.
//
// Open picks the backend from the store configuration.
package store
