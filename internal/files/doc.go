// Package files discovers tick input files for batch runs.
package files
