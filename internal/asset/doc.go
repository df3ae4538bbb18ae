// Package asset models the videos moving through the pipeline.
//
// An asset's canonical key is parsed from the recording service's fixed
// filename grammar and stays stable across every stage; directory membership,
// not this package, decides what stage a file is in.
package asset
