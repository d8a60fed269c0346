package main

import (
	"flag"
	"log"

	"github.com/scott/zonedb/store"
	"github.com/scott/zonedb/zone"
)

func main() {
	dbPath := flag.String("db", "zonedb.json", "Zone database file to load")
	snapshot := flag.String("snapshot", "", "Optional bbolt snapshot file to write after validation")
	dump := flag.Bool("dump", false, "Print the validated zone tree")
	flag.Parse()

	root, pools, err := zone.LoadFile(*dbPath)
	if err != nil {
		log.Fatalf("Failed to load zone database %s: %v", *dbPath, err)
	}

	zones, records := 0, 0
	root.Walk(func(z *zone.Zone) {
		zones++
		records += len(z.Records)
	})
	log.Printf("Loaded %d zones with %d records from %s", zones, records, *dbPath)
	log.Printf("Pools: %d recursion sources, %d request sources, %d synthesized PTR records",
		len(pools.Recursion), len(pools.Allow), len(pools.PTR))

	if *dump {
		root.Walk(func(z *zone.Zone) {
			log.Printf("zone %s: %d records, %d children", z.Host(), len(z.Records), len(z.Children))
		})
	}

	if *snapshot != "" {
		st, err := store.Open(store.Options{Path: *snapshot})
		if err != nil {
			log.Fatalf("Failed to open snapshot store: %v", err)
		}
		defer st.Close()

		if err := st.SaveSnapshot(root, pools); err != nil {
			log.Fatalf("Failed to write snapshot: %v", err)
		}
		log.Printf("Snapshot written to %s", st.Path())
	}
}
