// Package wgdb opens a database segment and wires the allocator, dirty
// tracking and consistency checks around it.
//
// # Backings
//
// heap.Config picks where the segment lives:
//
//	memory  process memory, gone on Close
//	file    a memory-mapped file; reopened when it already holds a segment
//	shared  a System V shared memory segment identified by Config.Key
//
// A new segment is initialised with every area's first subarea. An
// existing one is validated (mark, version, size) before use.
//
// # Usage
//
//	cfg, err := heap.LoadConfig("wgdb.toml")
//	if err != nil {
//	    return err
//	}
//	db, err := wgdb.Open(cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	rec, err := db.Alloc().AllocRecord(128)
//	...
//	if err := db.Flush(ctx); err != nil {
//	    return err
//	}
//
// A DB is not safe for concurrent use; see package heap/alloc.
package wgdb
