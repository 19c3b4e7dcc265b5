// Package file persists checkpoints and JSON artifacts under an output
// directory. Every write goes to a temporary file in the target directory
// which is synced and renamed over the destination, so readers never see
// a partially written file.
package file
