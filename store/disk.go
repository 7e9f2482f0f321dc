package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/jellydator/ttlcache/v3"

	"github.com/meshworks/gridnode/uid"
)

var DefaultCacheTTL = 1 * time.Minute

type DiskConfig struct {
	Logger    *slog.Logger
	Directory string
	// CacheTTL bounds how long a read can be served from memory without
	// touching the backing db. Zero means DefaultCacheTTL.
	CacheTTL time.Duration
	// BadgerLogLevel filters the backing db's own log output.
	BadgerLogLevel slog.Level
}

// Disk is a durable store over badger with a ttl read cache in front of
// it. Objects are json-encoded on the way in, so what comes back out of
// Get is the json-shaped form of what went in (numbers come back as
// float64 and so on); callers that need exact types should keep those
// objects in a Memory store instead.
type Disk struct {
	logger *slog.Logger
	db     *badger.DB
	cache  *ttlcache.Cache[uid.UID, []byte]
}

var _ Store = &Disk{}
var _ Closer = &Disk{}

func NewDisk(cfg DiskConfig) (*Disk, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, &ErrInternal{Err: err}
	}

	badgerLogLevel := badger.INFO
	switch cfg.BadgerLogLevel {
	case slog.LevelDebug:
		badgerLogLevel = badger.DEBUG
	case slog.LevelWarn:
		badgerLogLevel = badger.WARNING
	case slog.LevelError:
		badgerLogLevel = badger.ERROR
	}

	dbOpts := badger.DefaultOptions(cfg.Directory).
		WithLogger(dbLog{cfg.Logger.WithGroup("badger")}).
		WithLoggingLevel(badgerLogLevel).
		WithMemTableSize(16 << 20) // 16MB MemTableSize

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, &ErrInternal{Err: err}
	}

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	cache := ttlcache.New[uid.UID, []byte](
		ttlcache.WithTTL[uid.UID, []byte](cfg.CacheTTL),

		// A touched entry must still expire on schedule or a hot reader
		// could pin a stale value forever.
		ttlcache.WithDisableTouchOnHit[uid.UID, []byte](),
	)
	go cache.Start()

	return &Disk{
		logger: cfg.Logger.WithGroup("store"),
		db:     db,
		cache:  cache,
	}, nil
}

func (d *Disk) Save(id uid.UID, obj any) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return &ErrEncoding{ID: id, Reason: err.Error()}
	}
	err = d.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(id.Bytes(), raw); err != nil {
			return &ErrInternal{Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}
	d.cache.Set(id, raw, ttlcache.DefaultTTL)
	return nil
}

func (d *Disk) Get(id uid.UID) (any, error) {
	if item := d.cache.Get(id); item != nil && !item.IsExpired() {
		return decodeValue(id, item.Value())
	}

	var raw []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(id.Bytes())
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return &ErrNotFound{ID: id}
			}
			return &ErrInternal{Err: err}
		}
		raw, err = item.ValueCopy(nil)
		if err != nil {
			return &ErrInternal{Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.cache.Set(id, raw, ttlcache.DefaultTTL)
	return decodeValue(id, raw)
}

func (d *Disk) Delete(id uid.UID) error {
	err := d.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(id.Bytes()); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return &ErrNotFound{ID: id}
			}
			return &ErrInternal{Err: err}
		}
		if err := txn.Delete(id.Bytes()); err != nil {
			return &ErrInternal{Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}
	d.cache.Delete(id)
	return nil
}

func (d *Disk) Len() int {
	count := 0
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		d.logger.Error("failed to count entries", "error", err)
		return 0
	}
	return count
}

func (d *Disk) Close() error {
	var firstErr error

	if d.cache != nil {
		d.cache.Stop()
	}

	if err := d.db.Close(); err != nil {
		d.logger.Error("error closing backing db", "error", err)
		firstErr = &ErrInternal{Err: err}
	}

	return firstErr
}

func decodeValue(id uid.UID, raw []byte) (any, error) {
	var obj any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &ErrEncoding{ID: id, Reason: err.Error()}
	}
	return obj, nil
}

// dbLog routes badger's printf-style log calls into the node's slog
// output so the backing db shares one log stream with everything else.
type dbLog struct {
	l *slog.Logger
}

func (d dbLog) Errorf(format string, args ...any)   { d.l.Error(fmt.Sprintf(format, args...)) }
func (d dbLog) Warningf(format string, args ...any) { d.l.Warn(fmt.Sprintf(format, args...)) }
func (d dbLog) Infof(format string, args ...any)    { d.l.Info(fmt.Sprintf(format, args...)) }
func (d dbLog) Debugf(format string, args ...any)   { d.l.Debug(fmt.Sprintf(format, args...)) }
