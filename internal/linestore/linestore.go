// Package linestore is the durable, append-only store for small-file
// lines: a keyed ordered store with a secondary (fileName, lineNumber)
// ordering, backed by an embedded key-value database (go.etcd.io/bbolt).
//
// Two object stores become two top-level bbolt buckets, logs and meta.
package linestore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/alienxp03/logbench/internal/errs"
)

const (
	bucketLogs = "logs"
	bucketMeta = "meta"

	metaKeyPinned   = "pinnedIds"
	metaKeyFiles    = "files"
	metaKeyMaxLines = "maxLines"
	fileTotalPrefix = "total:"

	// DefaultMaxLines is the meta default when no maxLines slot exists.
	DefaultMaxLines = 50000
)

// Row is a single persisted line: the durable analogue of a LogLine,
// keyed by (fileName, lineNumber).
type Row struct {
	FileName   string `json:"fileName"`
	LineNumber int    `json:"lineNumber"`
	Content    string `json:"content"`
	Level      string `json:"level"`
}

// ID returns the cross-backend line identifier fileName:lineNumber.
func (r Row) ID() string {
	return fmt.Sprintf("%s:%d", r.FileName, r.LineNumber)
}

// FileMeta is a file's persisted total line count.
type FileMeta struct {
	FileName   string `json:"fileName"`
	TotalLines int    `json:"totalLines"`
}

// State is the meta slot snapshot returned by LoadState.
type State struct {
	PinnedIDs []string
	MaxLines  int
}

// Store is a durable line store for small files, backed by bbolt.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the bbolt database at path and
// ensures both object-store buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrStorage, path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketLogs)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(bucketMeta))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init buckets: %v", errs.ErrStorage, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// logKey orders rows by (fileName, lineNumber): a NUL separates the
// name from a zero-padded line number so bbolt's native byte-ordered
// cursor walks rows in ascending line-number order per file.
func logKey(fileName string, lineNumber int) []byte {
	return []byte(fmt.Sprintf("%s\x00%020d", fileName, lineNumber))
}

func logKeyPrefix(fileName string) []byte {
	return []byte(fileName + "\x00")
}

// AppendLogs upserts a batch of rows; idempotent by (fileName, lineNumber).
func (s *Store) AppendLogs(batch []Row) error {
	if len(batch) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketLogs))
		for _, row := range batch {
			data, err := json.Marshal(row)
			if err != nil {
				return err
			}
			if err := b.Put(logKey(row.FileName, row.LineNumber), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: appendLogs: %v", errs.ErrStorage, err)
	}
	return nil
}

// GetLastN returns the last n rows of fileName ordered ascending by
// line number.
func (s *Store) GetLastN(fileName string, n int) ([]Row, error) {
	if n <= 0 {
		return []Row{}, nil
	}
	var rows []Row
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketLogs)).Cursor()
		prefix := logKeyPrefix(fileName)
		upper := append(append([]byte{}, prefix...), 0xff)

		reversed := make([]Row, 0, n)
		k, v := c.Seek(upper)
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		for ; k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Prev() {
			var row Row
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			reversed = append(reversed, row)
			if len(reversed) == n {
				break
			}
		}
		rows = make([]Row, len(reversed))
		for i, r := range reversed {
			rows[len(reversed)-1-i] = r
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: getLastN(%s): %v", errs.ErrStorage, fileName, err)
	}
	return rows, nil
}

// GetByRange returns rows for fileName with lineNumber in [from,to].
func (s *Store) GetByRange(fileName string, from, to int) ([]Row, error) {
	if from > to {
		return []Row{}, nil
	}
	var rows []Row
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketLogs)).Cursor()
		prefix := string(logKeyPrefix(fileName))
		start := logKey(fileName, from)
		stop := logKey(fileName, to)
		for k, v := c.Seek(start); k != nil && strings.HasPrefix(string(k), prefix) && string(k) <= string(stop); k, v = c.Next() {
			var row Row
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: getByRange(%s,%d,%d): %v", errs.ErrStorage, fileName, from, to, err)
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// UpdateFileTotal records fileName's total line count in the meta bucket.
func (s *Store) UpdateFileTotal(fileName string, total int) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketMeta)).Put([]byte(fileTotalPrefix+fileName), []byte(strconv.Itoa(total)))
	})
	if err != nil {
		return fmt.Errorf("%w: updateFileTotal(%s): %v", errs.ErrStorage, fileName, err)
	}
	return nil
}

// GetFilesMeta lists every file with a persisted total.
func (s *Store) GetFilesMeta() ([]FileMeta, error) {
	var metas []FileMeta
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketMeta)).Cursor()
		prefix := []byte(fileTotalPrefix)
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			total, err := strconv.Atoi(string(v))
			if err != nil {
				continue
			}
			metas = append(metas, FileMeta{
				FileName:   strings.TrimPrefix(string(k), fileTotalPrefix),
				TotalLines: total,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: getFilesMeta: %v", errs.ErrStorage, err)
	}
	if metas == nil {
		metas = []FileMeta{}
	}
	return metas, nil
}

// DeleteFile removes every row and meta total for fileName.
func (s *Store) DeleteFile(fileName string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		logs := tx.Bucket([]byte(bucketLogs))
		c := logs.Cursor()
		prefix := string(logKeyPrefix(fileName))
		var keys [][]byte
		for k, _ := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte{}, k...))
		}
		for _, k := range keys {
			if err := logs.Delete(k); err != nil {
				return err
			}
		}
		return tx.Bucket([]byte(bucketMeta)).Delete([]byte(fileTotalPrefix + fileName))
	})
	if err != nil {
		return fmt.Errorf("%w: deleteFile(%s): %v", errs.ErrStorage, fileName, err)
	}
	return nil
}

// ClearAll drops every row and every meta slot.
func (s *Store) ClearAll() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketLogs)); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		if err := tx.DeleteBucket([]byte(bucketMeta)); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		if _, err := tx.CreateBucket([]byte(bucketLogs)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketMeta))
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: clearAll: %v", errs.ErrStorage, err)
	}
	return nil
}

// LoadState reads the pinned-id set and the maxLines hint from meta,
// defaulting pinned=[] and maxLines=DefaultMaxLines when absent.
func (s *Store) LoadState() (State, error) {
	state := State{PinnedIDs: []string{}, MaxLines: DefaultMaxLines}
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(bucketMeta))
		if v := meta.Get([]byte(metaKeyPinned)); v != nil {
			if err := json.Unmarshal(v, &state.PinnedIDs); err != nil {
				return err
			}
		}
		if v := meta.Get([]byte(metaKeyMaxLines)); v != nil {
			n, err := strconv.Atoi(string(v))
			if err == nil {
				state.MaxLines = n
			}
		}
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("%w: loadState: %v", errs.ErrStorage, err)
	}
	return state, nil
}

// SetMaxLines persists the maxLines meta hint.
func (s *Store) SetMaxLines(n int) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(bucketMeta))
		return meta.Put([]byte(metaKeyMaxLines), []byte(strconv.Itoa(n)))
	})
	if err != nil {
		return fmt.Errorf("%w: setMaxLines: %v", errs.ErrStorage, err)
	}
	return nil
}

// UpdatePinned rewrites the full pinned-id set in meta, eagerly, on
// every mutation.
func (s *Store) UpdatePinned(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	err = retryOnce(func() error {
		return s.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket([]byte(bucketMeta)).Put([]byte(metaKeyPinned), data)
		})
	})
	if err != nil {
		return fmt.Errorf("%w: updatePinned: %v", errs.ErrStorage, err)
	}
	return nil
}

// retryOnce retries a failed pinned write exactly once. Nothing else
// in this store retries.
func retryOnce(fn func() error) error {
	if err := fn(); err != nil {
		return fn()
	}
	return nil
}
