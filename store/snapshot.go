package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
	bolt "go.etcd.io/bbolt"

	"github.com/scott/zonedb/zone"
)

// Record key format: {zone host}:{index}
// The zero-padded index preserves record order under cursor iteration.
func recordKey(host string, index int) string {
	return fmt.Sprintf("%s:%06d", host, index)
}

// SaveSnapshot writes a validated zone tree and its pools in a single
// transaction, replacing any previous snapshot.
func (s *Store) SaveSnapshot(root *zone.Zone, pools *zone.Pools) error {
	if root == nil {
		return fmt.Errorf("root zone required")
	}
	now := time.Now().UTC()

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if err := tx.DeleteBucket(bucket); err != nil && err != bolt.ErrBucketNotFound {
				return fmt.Errorf("reset bucket %s: %w", bucket, err)
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}

		// Hosts key both the zone bucket and the record key prefixes. Two
		// zones sharing a host would overwrite each other's entry and
		// interleave their records, so refuse the snapshot.
		seen := make(map[string]bool)
		var saveErr error
		root.Walk(func(z *zone.Zone) {
			if saveErr != nil {
				return
			}
			host := z.Host()
			if seen[host] {
				saveErr = fmt.Errorf("duplicate zone host %q", host)
				return
			}
			seen[host] = true
			saveErr = saveZone(tx, z, now)
		})
		if saveErr != nil {
			return saveErr
		}

		ptrBucket := tx.Bucket(BucketPTR)
		for _, ptr := range pools.PTR {
			entry, err := newRecordEntry(ptr)
			if err != nil {
				return err
			}
			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err := ptrBucket.Put([]byte(ptr.Key()), data); err != nil {
				return err
			}
		}

		srcBucket := tx.Bucket(BucketSources)
		for _, src := range pools.Recursion {
			if err := putSource(srcBucket, SourceKindRecursion, src.Address, src.Key()); err != nil {
				return err
			}
		}
		for _, src := range pools.Allow {
			if err := putSource(srcBucket, SourceKindRequest, src.Address, src.Key()); err != nil {
				return err
			}
		}

		return nil
	})
}

func saveZone(tx *bolt.Tx, z *zone.Zone, now time.Time) error {
	entry := ZoneEntry{
		Host:       z.Host(),
		Namespace:  z.Namespace,
		NumRecords: len(z.Records),
		SavedAt:    now,
	}
	if z.Parent != nil {
		entry.Parent = z.Parent.Host()
	}
	for _, child := range z.Children {
		entry.Children = append(entry.Children, child.Host())
	}
	for _, src := range z.Recursion {
		entry.Recursion = append(entry.Recursion, src.Address)
	}
	for _, src := range z.Allow {
		entry.Allow = append(entry.Allow, src.Address)
	}

	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}
	if err := tx.Bucket(BucketZones).Put([]byte(entry.Host), data); err != nil {
		return err
	}

	records := tx.Bucket(BucketRecords)
	for i, rec := range z.Records {
		recEntry, err := newRecordEntry(rec)
		if err != nil {
			return err
		}
		data, err := json.Marshal(&recEntry)
		if err != nil {
			return err
		}
		if err := records.Put([]byte(recordKey(entry.Host, i)), data); err != nil {
			return err
		}
	}

	return nil
}

func putSource(bucket *bolt.Bucket, kind, address, key string) error {
	data, err := json.Marshal(&SourceEntry{Kind: kind, Address: address, Key: key})
	if err != nil {
		return err
	}
	return bucket.Put([]byte(kind+":"+key), data)
}

// GetZone retrieves a stored zone by host name. The host is normalized to
// FQDN form, so "example.com." and "example.com" address the same entry.
func (s *Store) GetZone(host string) (*ZoneEntry, error) {
	host = dns.Fqdn(host)

	var entry ZoneEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(BucketZones).Get([]byte(host))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListZones returns every stored zone, ordered by host.
func (s *Store) ListZones() ([]ZoneEntry, error) {
	var zones []ZoneEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketZones).ForEach(func(k, v []byte) error {
			var entry ZoneEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshal zone %s: %w", k, err)
			}
			zones = append(zones, entry)
			return nil
		})
	})

	return zones, err
}

// ZoneRecords returns the stored records of one zone in their original order.
func (s *Store) ZoneRecords(host string) ([]RecordEntry, error) {
	host = dns.Fqdn(host)
	prefix := []byte(host + ":")

	var records []RecordEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(BucketRecords).Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var entry RecordEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshal record %s: %w", k, err)
			}
			records = append(records, entry)
		}
		return nil
	})

	return records, err
}

// PTRRecords returns the stored reverse-pointer pool.
func (s *Store) PTRRecords() ([]RecordEntry, error) {
	var records []RecordEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketPTR).ForEach(func(k, v []byte) error {
			var entry RecordEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshal PTR %s: %w", k, err)
			}
			records = append(records, entry)
			return nil
		})
	})

	return records, err
}

// Sources returns the stored source pools, both kinds.
func (s *Store) Sources() ([]SourceEntry, error) {
	var sources []SourceEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketSources).ForEach(func(k, v []byte) error {
			var entry SourceEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshal source %s: %w", k, err)
			}
			sources = append(sources, entry)
			return nil
		})
	})

	return sources, err
}
