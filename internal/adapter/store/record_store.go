package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"invoicerag/internal/domain"
)

var (
	bucketRecords  = []byte("records")
	bucketSettings = []byte("settings")
	bucketClients  = []byte("clients")

	keyProfile = []byte("business_profile")
)

// RecordStore persists invoice records, the business profile and the client
// roster in bbolt buckets. It shares a database handle with the vector
// index but the two stay eventually consistent at best: there is no
// cross-bucket transaction spanning an index write.
type RecordStore struct {
	db *bbolt.DB
}

// Open opens the database at path and ensures all buckets exist.
func Open(path string) (*RecordStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRecords, bucketSettings, bucketClients, bucketVectors} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &RecordStore{db: db}, nil
}

// DB exposes the underlying handle so the vector index can share it.
func (s *RecordStore) DB() *bbolt.DB {
	return s.db
}

func (s *RecordStore) Close() error {
	return s.db.Close()
}

func recordKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// CreateRecord assigns an id and creation time, then persists the record.
func (s *RecordStore) CreateRecord(rec *domain.InvoiceRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)

		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		rec.ID = id
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(recordKey(id), data)
	})
}

// UpdateRecord overwrites an existing record in place.
func (s *RecordStore) UpdateRecord(rec *domain.InvoiceRecord) error {
	if rec.ID == 0 {
		return fmt.Errorf("record has no id")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b.Get(recordKey(rec.ID)) == nil {
			return fmt.Errorf("record not found: %d", rec.ID)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(recordKey(rec.ID), data)
	})
}

// GetRecord fetches one record by id.
func (s *RecordStore) GetRecord(id uint64) (domain.InvoiceRecord, error) {
	var rec domain.InvoiceRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get(recordKey(id))
		if data == nil {
			return fmt.Errorf("record not found: %d", id)
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

// ListRecords returns all records, most recently created first.
func (s *RecordStore) ListRecords() ([]domain.InvoiceRecord, error) {
	var records []domain.InvoiceRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			var rec domain.InvoiceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// DeleteRecord removes a record; deleting an unknown id is a no-op.
func (s *RecordStore) DeleteRecord(id uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).Delete(recordKey(id))
	})
}

// FindByInvoiceNumber returns the first record carrying the given invoice
// number, or nil when none does. Invoice numbers are not enforced unique;
// export keys its upsert on this lookup.
func (s *RecordStore) FindByInvoiceNumber(number string) (*domain.InvoiceRecord, error) {
	if number == "" {
		return nil, nil
	}
	var found *domain.InvoiceRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			if found != nil {
				return nil
			}
			var rec domain.InvoiceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.InvoiceNumber == number {
				found = &rec
			}
			return nil
		})
	})
	return found, err
}

// CountRecords returns the number of stored records.
func (s *RecordStore) CountRecords() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketRecords).Stats().KeyN
		return nil
	})
	return count, err
}

// NextInvoiceNumber derives the next sequential draft number from the
// record count.
func (s *RecordStore) NextInvoiceNumber() (string, error) {
	count, err := s.CountRecords()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Invoice-#%d", count+1), nil
}

// SaveProfile persists the business profile.
func (s *RecordStore) SaveProfile(p domain.BusinessProfile) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSettings).Put(keyProfile, data)
	})
}

// GetProfile returns the stored business profile; a zero profile when none
// was saved yet.
func (s *RecordStore) GetProfile() (domain.BusinessProfile, error) {
	var p domain.BusinessProfile
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSettings).Get(keyProfile)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &p)
	})
	return p, err
}

// AddClient assigns an id and persists a roster entry.
func (s *RecordStore) AddClient(c *domain.Client) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketClients)
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		c.ID = int64(id)

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return b.Put(recordKey(id), data)
	})
}

// ListClients returns the roster ordered by name.
func (s *RecordStore) ListClients() ([]domain.Client, error) {
	var clients []domain.Client
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketClients).ForEach(func(k, v []byte) error {
			var c domain.Client
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			clients = append(clients, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].Name < clients[j].Name
	})
	return clients, nil
}
