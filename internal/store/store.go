package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrDanglingMembership = errors.New("playlist membership references a missing playlist or stream")
)

// Store is the persistence interface of the catalog.
type Store interface {
	UpsertStream(ctx context.Context, s *catalog.Stream) error
	UpsertStreams(ctx context.Context, streams []*catalog.Stream) error
	GetStream(ctx context.Context, uid int64) (*catalog.Stream, error)
	GetStreamByKey(ctx context.Context, key catalog.NaturalKey) (*catalog.Stream, error)
	DeleteStream(ctx context.Context, uid int64) error
	DeleteOrphanStreams(ctx context.Context) (int64, error)

	CreatePlaylist(ctx context.Context, p *catalog.Playlist) error
	CreatePlaylistWithStreams(ctx context.Context, name string, streams []*catalog.Stream) (*catalog.Playlist, error)
	GetPlaylist(ctx context.Context, uid int64) (*catalog.Playlist, error)
	ListPlaylists(ctx context.Context) ([]catalog.PlaylistMetadata, error)
	RenamePlaylist(ctx context.Context, uid int64, name string) error
	SetPlaylistThumbnail(ctx context.Context, uid int64, thumbnailURL *string) error
	DeletePlaylist(ctx context.Context, uid int64) error

	AppendStreams(ctx context.Context, playlistID int64, streamIDs ...int64) error
	InsertStream(ctx context.Context, playlistID, streamID int64, pos int) error
	RemoveAt(ctx context.Context, playlistID int64, pos int) error
	MoveStream(ctx context.Context, playlistID int64, from, to int) error
	ReplaceStreams(ctx context.Context, playlistID int64, streamIDs []int64) error
	RemoveDuplicateStreams(ctx context.Context, playlistID int64) (int, error)
	PlaylistStreams(ctx context.Context, playlistID int64) ([]catalog.PlaylistStreamEntry, error)
	PlaylistsContainingStream(ctx context.Context, streamID int64) ([]int64, error)
	CheckContiguity(ctx context.Context, playlistID int64) error
	CompactPlaylist(ctx context.Context, playlistID int64) error
	CompactAll(ctx context.Context) (int, error)

	BookmarkRemotePlaylist(ctx context.Context, info catalog.PlaylistInfo) (*catalog.RemotePlaylist, error)
	GetRemotePlaylist(ctx context.Context, uid int64) (*catalog.RemotePlaylist, error)
	GetRemotePlaylistByKey(ctx context.Context, key catalog.NaturalKey) (*catalog.RemotePlaylist, error)
	ListRemotePlaylists(ctx context.Context) ([]catalog.RemotePlaylist, error)
	ReconcileRemotePlaylist(ctx context.Context, uid int64, info catalog.PlaylistInfo) (bool, error)
	DeleteRemotePlaylist(ctx context.Context, uid int64) error

	Subscribe(ctx context.Context, info catalog.ChannelInfo) (*catalog.Subscription, error)
	GetSubscription(ctx context.Context, uid int64) (*catalog.Subscription, error)
	GetSubscriptionByKey(ctx context.Context, key catalog.NaturalKey) (*catalog.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]catalog.Subscription, error)
	UpdateSubscriptionData(ctx context.Context, uid int64, info catalog.ChannelInfo) error
	SetNotificationMode(ctx context.Context, uid int64, mode catalog.NotificationMode) error
	Unsubscribe(ctx context.Context, uid int64) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations. Foreign keys are enabled on
// every connection and transactions take the write lock when they begin.
func New(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite&_txlock=immediate"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serializes writers to a playlist's membership set.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction. Any error or panic rolls it back.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// withMembershipTx is withTx for transactions that write the join table. The
// deferred foreign keys are verified before COMMIT, because a COMMIT rejected
// by SQLite leaves the transaction open.
func (s *SQLiteStore) withMembershipTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return checkForeignKeys(ctx, tx)
	})
}

func checkForeignKeys(ctx context.Context, tx *sqlx.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check(playlist_stream_join)")
	if err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		return ErrDanglingMembership
	}
	return rows.Err()
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %v: %w", what, id, err)
}

func affectedOrNotFound(res sql.Result, what string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return nil
}
