// Package userdir provides the SQLite-backed user directory behind the
// demo application's user pages.
//
// Logins are normalized (NFC, lower case) before they are stored or looked
// up, so "Ada" and "ada" address the same user. Listings are ordered by
// login.
//
// Connections run in WAL mode with synchronous=NORMAL and wait up to five
// seconds on a locked database. The schema version lives in
// PRAGMA user_version.
package userdir
