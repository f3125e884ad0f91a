// Command janitor removes stale Plex media and fully seeded qBittorrent
// torrents.
//
// "janitor run" performs one pass, "janitor plan" prints what a pass would
// remove, and "janitor daemon" repeats passes on a cron schedule while
// exporting Prometheus metrics.
package main
