// Package diagnostics keeps screenshots of work items that failed, for human
// post-mortem. The engine never reads them back.
//
// Files are named erro_<phase>_<id>_<YYYYmmdd_HHMMSS>.png and written to the
// configured error directory. When object storage is enabled each file is also
// uploaded under the storage prefix.
package diagnostics
