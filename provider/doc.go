// Package provider defines the base provider contract and a generic
// factory registry used by the transcription and llm packages to make
// their backends runtime-selectable from configuration.
package provider
