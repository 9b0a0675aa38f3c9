// Package notify contains the in-process event fan-out: a topic per
// delivery, no replay, no buffering for absent subscribers.
//
// The broker decouples the emission loops from watchers; a delivery with no
// watchers costs nothing beyond its loop, and a slow watcher loses events
// instead of slowing anyone else down.
package notify
