// Package tempfile manages reference-counted temporary files.
//
// # Overview
//
// A temporary file created through a Directory can be consumed by several
// independent parties at once: the code that created it (and may pass its
// path to an external tool) and any number of open read or write handles.
// The backing file is deleted exactly once, by whichever party releases
// the last reference, and never earlier.
//
//	dir, _ := tempfile.NewDirectory("", "myapp")
//	f, _ := dir.Create("export-", ".csv")
//	defer f.Close()
//
//	path, _ := f.Path()
//	if err := runExternalTool(path); err != nil {
//	    return err // deferred Close deletes the file
//	}
//
//	h, err := f.Open(tempfile.ModeRead)
//	if err != nil {
//	    return err
//	}
//	return serve(h) // file lives until h.Close, past f.Close
//
// # Naming
//
// New files are named prefix+base+suffix with a random UUID base. Creation
// uses an exclusive-create syscall and retries on name collision, so a
// name race with a concurrent creator (or leftovers from a previous run)
// is handled internally.
//
// # Sweeping
//
// Orphans left behind by crashed processes can be cleaned up with Sweeper,
// which removes sufficiently old files on a cron schedule.
package tempfile
