// Package bildtext generates AI captions for photographs, optionally
// enriched with a human-readable location derived from embedded GPS tags,
// and writes them back into image metadata.
package bildtext

// Config holds configuration for a captioning run.
type Config struct {
	Provider string
	Model    string
	Style    string

	NoGPS   bool
	Embed   bool
	Sidecar bool
	Backup  bool
	DryRun  bool
	Force   bool
}
