// Package logging provides structured logging for the criteria pipeline.
//
// Every Logger carries a run id so that the console lines and the optional
// per-run JSON log file of one invocation can be correlated.
package logging
