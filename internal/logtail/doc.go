// Package logtail reads the tail of the application's own log file for the
// in-app log pane.
//
// Read extracts the last N lines in one pass with a ring buffer, so memory
// stays proportional to N and not to the file size. Parse turns a line
// written by the log/slog text handler back into a Record the UI can style
// by level.
//
// Example usage:
//
//	lines, err := logtail.Read(cfg.Log.File, 200)
//	if err != nil {
//		return err
//	}
//	for _, line := range lines {
//		if rec, ok := logtail.Parse(line); ok {
//			fmt.Println(rec.Level, rec.Summary())
//		}
//	}
//
// Read returns nil, nil for a file that does not exist yet. Parse never
// fails hard; lines it cannot read are reported as not ok and shown raw.
package logtail
