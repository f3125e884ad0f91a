// Package qbittorrent is a minimal qBittorrent WebUI API v2 client.
//
// It logs in with form credentials and keeps the SID cookie in a cookie jar,
// lists torrents with their ratio and seeding time, reads free disk space
// from the sync endpoint and deletes torrents together with their files.
package qbittorrent
