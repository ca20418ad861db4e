package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"paygate/internal/session"
	"paygate/kit/errs"
)

var bucketSessions = []byte("payment_sessions")

type boltRecord struct {
	Session   json.RawMessage `json:"session"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Bolt stores sessions in a bbolt database so they survive process restarts
// as well as browser redirects.
type Bolt struct {
	db  *bbolt.DB
	ttl time.Duration
}

func NewBolt(db *bbolt.DB, ttl time.Duration) (*Bolt, error) {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sessionstore: create bucket: %w", err)
	}
	return &Bolt{db: db, ttl: ttl}, nil
}

func NewBoltFromFile(path string, ttl time.Duration) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: open %s: %w", path, err)
	}
	return NewBolt(db, ttl)
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Get(ctx context.Context, id string) (*session.PaymentSession, error) {
	var rec boltRecord
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("session %s: %w", id, errs.ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, err
		}
		return nil, errs.Integration("sessionstore", "read session "+id)
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, fmt.Errorf("session %s expired: %w", id, errs.ErrNotFound)
	}
	var s session.PaymentSession
	if err := json.Unmarshal(rec.Session, &s); err != nil {
		return nil, errs.Integration("sessionstore", "unmarshal session "+id)
	}
	return &s, nil
}

func (b *Bolt) Put(ctx context.Context, id string, s *session.PaymentSession) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return errs.Integration("sessionstore", "marshal session "+id)
	}
	data, err := json.Marshal(boltRecord{Session: payload, ExpiresAt: time.Now().Add(b.ttl)})
	if err != nil {
		return errs.Integration("sessionstore", "marshal record "+id)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(id), data)
	})
}

func (b *Bolt) Delete(ctx context.Context, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(id))
	})
}
