package store

// schema keeps the table and column names of the on-disk layout other tools
// read. Foreign keys on the join table are deferred to commit so positions
// can pass through intermediate states inside one transaction.
const schema = `
CREATE TABLE IF NOT EXISTS streams (
    uid                          INTEGER PRIMARY KEY AUTOINCREMENT,
    service_id                   INTEGER NOT NULL,
    url                          TEXT NOT NULL,
    title                        TEXT NOT NULL,
    live                         BOOLEAN NOT NULL DEFAULT 0,
    audio_only                   BOOLEAN NOT NULL DEFAULT 0,
    duration                     INTEGER NOT NULL DEFAULT 0,
    uploader                     TEXT NOT NULL DEFAULT '',
    uploader_url                 TEXT,
    thumbnail_url                TEXT,
    view_count                   INTEGER,
    textual_upload_date          TEXT,
    upload_date                  DATETIME,
    is_upload_date_approximation BOOLEAN
);

CREATE UNIQUE INDEX IF NOT EXISTS index_streams_service_id_url ON streams(service_id, url);

CREATE TABLE IF NOT EXISTS playlists (
    uid           INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT,
    thumbnail_url TEXT
);

CREATE INDEX IF NOT EXISTS index_playlists_name ON playlists(name);

CREATE TABLE IF NOT EXISTS remote_playlists (
    uid           INTEGER PRIMARY KEY AUTOINCREMENT,
    service_id    INTEGER NOT NULL,
    name          TEXT,
    url           TEXT,
    thumbnail_url TEXT,
    uploader      TEXT,
    stream_count  INTEGER
);

CREATE INDEX IF NOT EXISTS index_remote_playlists_name ON remote_playlists(name);
CREATE UNIQUE INDEX IF NOT EXISTS index_remote_playlists_service_id_url ON remote_playlists(service_id, url);

CREATE TABLE IF NOT EXISTS playlist_stream_join (
    playlist_id INTEGER NOT NULL
        REFERENCES playlists(uid) ON UPDATE CASCADE ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
    stream_id   INTEGER NOT NULL
        REFERENCES streams(uid) ON UPDATE CASCADE ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
    join_index  INTEGER NOT NULL,
    PRIMARY KEY (playlist_id, join_index)
);

CREATE UNIQUE INDEX IF NOT EXISTS index_playlist_stream_join_playlist_id_join_index
    ON playlist_stream_join(playlist_id, join_index);
CREATE INDEX IF NOT EXISTS index_playlist_stream_join_stream_id ON playlist_stream_join(stream_id);

CREATE TABLE IF NOT EXISTS subscriptions (
    uid               INTEGER PRIMARY KEY AUTOINCREMENT,
    service_id        INTEGER NOT NULL,
    url               TEXT,
    name              TEXT,
    avatar_url        TEXT,
    subscriber_count  INTEGER,
    description       TEXT,
    notification_mode INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS index_subscriptions_service_id_url ON subscriptions(service_id, url);
`
