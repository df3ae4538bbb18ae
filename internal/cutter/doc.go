// Package cutter invokes the external cutting tool that removes everything
// outside an asset's keep timeline. Two backends exist, mkvmerge and ffmpeg;
// which one runs is a configuration choice, both produce the output file
// atomically via a temporary name.
package cutter
