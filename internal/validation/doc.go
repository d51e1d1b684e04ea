// Package validation checks input and output paths before a run.
package validation
