// Package store keeps backend items in a bbolt database, so that metadata survives between runs.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	vr "github.com/alanbriolat/video-resolver"
)

var Buckets = struct {
	Metadata  []byte
	Videos    []byte
	Playlists []byte
}{
	Metadata:  []byte("__metadata__"),
	Videos:    []byte("videos"),
	Playlists: []byte("playlists"),
}

var MetadataKeys = struct {
	Version []byte
}{
	Version: []byte("version"),
}

const currentVersion = 1

type record struct {
	Item    vr.Item   `json:"item"`
	Fetched time.Time `json:"fetched"`
}

type DB struct {
	*bbolt.DB
}

func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) (err error) {
		// Ensure buckets exist
		var metadata *bbolt.Bucket
		if metadata, err = tx.CreateBucketIfNotExists(Buckets.Metadata); err != nil {
			return err
		}
		for _, name := range [][]byte{Buckets.Videos, Buckets.Playlists} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		var version int
		if versionBytes := metadata.Get(MetadataKeys.Version); versionBytes != nil {
			if err = json.Unmarshal(versionBytes, &version); err != nil {
				return err
			}
		}
		if version > currentVersion {
			return fmt.Errorf("store version %d is newer than supported version %d", version, currentVersion)
		}

		if versionBytes, err := json.Marshal(currentVersion); err != nil {
			return err
		} else if err = metadata.Put(MetadataKeys.Version, versionBytes); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

// Get returns the items for ids that were stored no earlier than notBefore, and the ids that weren't.
func (d *DB) Get(bucket []byte, ids []string, notBefore time.Time) (found vr.ItemList, missing []string, err error) {
	err = d.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		for _, id := range ids {
			data := b.Get([]byte(id))
			if data == nil {
				missing = append(missing, id)
				continue
			}
			var r record
			if err := json.Unmarshal(data, &r); err != nil {
				return fmt.Errorf("decoding %s/%s: %w", bucket, id, err)
			}
			if r.Fetched.Before(notBefore) {
				missing = append(missing, id)
				continue
			}
			found = append(found, r.Item)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return found, missing, nil
}

// Put stores items keyed by id.
func (d *DB) Put(bucket []byte, items map[string]*vr.Item, fetched time.Time) error {
	return d.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		for id, item := range items {
			data, err := json.Marshal(record{Item: *item, Fetched: fetched})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of items in a bucket.
func (d *DB) Count(bucket []byte) (n int, err error) {
	err = d.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Purge removes items stored before notBefore, returning how many were removed.
func (d *DB) Purge(notBefore time.Time) (removed int, err error) {
	err = d.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{Buckets.Videos, Buckets.Playlists} {
			b := tx.Bucket(name)
			var stale [][]byte
			err := b.ForEach(func(k, v []byte) error {
				var r record
				if err := json.Unmarshal(v, &r); err != nil || r.Fetched.Before(notBefore) {
					stale = append(stale, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range stale {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			removed += len(stale)
		}
		return nil
	})
	return removed, err
}
