package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pixperk/lockbox/pkg/lock"
	"github.com/pixperk/lockbox/pkg/types"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
	"google.golang.org/protobuf/encoding/protowire"
)

var eventsBucket = []byte("events")

// Journal is an append-only audit log of lock and file operations
// stored in a bbolt database. Keys are big-endian sequence numbers so a
// cursor walks entries in append order; values are protobuf wire encoded.
type Journal struct {
	db *bolt.DB
}

func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(eventsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// stores ev and returns its sequence number
func (j *Journal) Append(ev types.Event) (uint64, error) {
	var seq uint64
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventsBucket)

		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		ev.Seq = seq
		if ev.Time.IsZero() {
			ev.Time = time.Now()
		}

		return b.Put(seqKey(seq), encodeEvent(ev))
	})
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	return seq, nil
}

// returns up to limit events, newest first
func (j *Journal) Recent(limit int) ([]types.Event, error) {
	if limit <= 0 {
		return nil, nil
	}

	events := make([]types.Event, 0, limit)
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		for k, v := c.Last(); k != nil && len(events) < limit; k, v = c.Prev() {
			ev, err := decodeEvent(v)
			if err != nil {
				return fmt.Errorf("event %d: %w", binary.BigEndian.Uint64(k), err)
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Hook journals lock table changes from inside the registry, so entries keep
// the order the registry applied them in. Append failures are logged only.
func (j *Journal) Hook(log zerolog.Logger) lock.Hook {
	return func(ev types.Event) {
		if _, err := j.Append(ev); err != nil {
			log.Warn().Err(err).Str("op", string(ev.Op)).Str("name", ev.Name).Msg("journal append failed")
		}
	}
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// field numbers of the stored event message
const (
	evSeq    protowire.Number = 1
	evOp     protowire.Number = 2
	evName   protowire.Number = 3
	evHolder protowire.Number = 4
	evTime   protowire.Number = 5 // unix nanoseconds
)

func encodeEvent(ev types.Event) []byte {
	var b []byte
	b = protowire.AppendTag(b, evSeq, protowire.VarintType)
	b = protowire.AppendVarint(b, ev.Seq)
	b = protowire.AppendTag(b, evOp, protowire.BytesType)
	b = protowire.AppendString(b, string(ev.Op))
	b = protowire.AppendTag(b, evName, protowire.BytesType)
	b = protowire.AppendString(b, ev.Name)
	b = protowire.AppendTag(b, evHolder, protowire.BytesType)
	b = protowire.AppendString(b, ev.Holder)
	b = protowire.AppendTag(b, evTime, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ev.Time.UnixNano()))
	return b
}

func decodeEvent(b []byte) (types.Event, error) {
	var ev types.Event
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ev, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == evSeq && typ == protowire.VarintType:
			ev.Seq, n = protowire.ConsumeVarint(b)
		case num == evTime && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			ev.Time = time.Unix(0, int64(v))
		case num == evOp && typ == protowire.BytesType:
			var v string
			v, n = protowire.ConsumeString(b)
			ev.Op = types.Op(v)
		case num == evName && typ == protowire.BytesType:
			ev.Name, n = protowire.ConsumeString(b)
		case num == evHolder && typ == protowire.BytesType:
			ev.Holder, n = protowire.ConsumeString(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return ev, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return ev, nil
}
