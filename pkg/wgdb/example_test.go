package wgdb_test

import (
	"fmt"

	"github.com/springgod/whitedb/heap"
	"github.com/springgod/whitedb/pkg/wgdb"
)

// Example allocates and frees a record in an in-memory database.
func Example() {
	cfg := heap.DefaultConfig()
	cfg.Size = "1 MiB"
	db, err := wgdb.Open(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer db.Close()

	rec, err := db.Alloc().AllocRecord(100)
	if err != nil {
		fmt.Println(err)
		return
	}
	size, _ := db.Alloc().ObjectSize(heap.AreaDataRec, rec)
	fmt.Println("occupied:", size)
	fmt.Println("freed:", db.Alloc().FreeRecord(rec) == nil)
	fmt.Println("consistent:", db.Check() == nil)
	// Output:
	// occupied: 104
	// freed: true
	// consistent: true
}
