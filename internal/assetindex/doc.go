// Package assetindex is the asset index the mission editor runs against: a
// directory of HCL asset files, each file being one package that may declare
// dynamic node kinds and record types.
//
// The index keeps one Asset per declared kind, ordered by object path, and
// notifies subscribers when assets are added or removed, when a package is
// (re)loaded and when a full scan completes. While a full scan is running
// IsLoadingAssets reports true so that subscribers can defer expensive work
// until the files-loaded notification.
//
// Watch keeps the index in sync with the directory using fsnotify.
package assetindex
