// Package loader builds organizers over model.State from YAML definitions
// stored on any afs supported storage.
package loader
