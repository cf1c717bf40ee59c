package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/elonfeng/mediavault/internal/config"
	"github.com/elonfeng/mediavault/internal/logging"
	"github.com/elonfeng/mediavault/internal/scheduler"
	"github.com/elonfeng/mediavault/internal/store"
	"github.com/elonfeng/mediavault/pkg/catalog"
	"github.com/elonfeng/mediavault/pkg/feed"
	"github.com/elonfeng/mediavault/pkg/server"
	"github.com/rs/zerolog"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// env is what every command needs: config, logger and an open store.
type env struct {
	cfg *config.Config
	log zerolog.Logger
	db  *store.SQLiteStore
}

func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &env{cfg: cfg, log: logging.New(cfg.Log), db: db}, nil
}

func (e *env) fetcher() *feed.Fetcher {
	return feed.NewFetcher(e.cfg.Feed.ServiceID, e.cfg.Feed.UserAgent, e.cfg.Feed.ParseTimeout(),
		feed.WithRetries(e.cfg.Feed.Retries))
}

func (e *env) scheduler() *scheduler.Scheduler {
	return scheduler.New(e.db, e.fetcher(), e.log,
		e.cfg.Schedule.ParseRefreshInterval(), e.cfg.Feed.Concurrency)
}

// withEnv opens the environment, runs fn and closes the store.
func withEnv(fn func(e *env) error) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.db.Close()
	return fn(e)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return i, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func runPlaylists(ctx context.Context, jsonOutput bool) error {
	return withEnv(func(e *env) error {
		local, err := e.db.ListPlaylists(ctx)
		if err != nil {
			return err
		}
		remote, err := e.db.ListRemotePlaylists(ctx)
		if err != nil {
			return err
		}
		merged := catalog.MergePlaylists(local, remote)

		if jsonOutput {
			return printJSON(merged)
		}
		if len(merged) == 0 {
			fmt.Println("no playlists (create one: mediavault playlist create <name>)")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tID\tNAME\tSTREAMS\tURL")
		for _, item := range merged {
			switch p := item.(type) {
			case *catalog.PlaylistMetadata:
				fmt.Fprintf(w, "local\t%d\t%s\t%d\t-\n", p.UID, orDash(p.Name), p.StreamCount)
			case *catalog.RemotePlaylist:
				count := "?"
				if p.StreamCount != nil {
					count = strconv.FormatInt(*p.StreamCount, 10)
				}
				fmt.Fprintf(w, "remote\t%d\t%s\t%s\t%s\n", p.UID, orDash(p.Name), count, orDash(p.URL))
			}
		}
		return w.Flush()
	})
}

func runPlaylistCreate(ctx context.Context, name, thumbnail string) error {
	return withEnv(func(e *env) error {
		p := catalog.NewPlaylist(name, catalog.OptString(thumbnail))
		if err := e.db.CreatePlaylist(ctx, p); err != nil {
			return err
		}
		fmt.Printf("created playlist %d\n", p.UID)
		return nil
	})
}

func runPlaylistShow(ctx context.Context, rawID string, jsonOutput bool) error {
	id, err := parseID(rawID, "playlist")
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		p, err := e.db.GetPlaylist(ctx, id)
		if err != nil {
			return err
		}
		entries, err := e.db.PlaylistStreams(ctx, id)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]any{"playlist": p, "streams": entries})
		}

		fmt.Printf("%s (%d streams)\n\n", orDash(p.Name), len(entries))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "POS\tSTREAM\tTITLE\tUPLOADER\tURL")
		for _, en := range entries {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", en.JoinIndex, en.UID, en.Title, en.Uploader, en.URL)
		}
		return w.Flush()
	})
}

func runPlaylistImport(ctx context.Context, url, name string) error {
	return withEnv(func(e *env) error {
		remote, err := e.fetcher().FetchPlaylist(ctx, url)
		if err != nil {
			return err
		}
		if name == "" {
			name = remote.Info.Name
		}

		streams := make([]*catalog.Stream, len(remote.Streams))
		for i, item := range remote.Streams {
			streams[i] = catalog.NewStreamFromItem(item)
		}

		p, err := e.db.CreatePlaylistWithStreams(ctx, name, streams)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d streams into playlist %d\n", len(streams), p.UID)
		return nil
	})
}

func runPlaylistInsert(ctx context.Context, rawPlaylist, rawStream string, at int) error {
	pid, err := parseID(rawPlaylist, "playlist")
	if err != nil {
		return err
	}
	sid, err := parseID(rawStream, "stream")
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		if _, err := e.db.GetStream(ctx, sid); err != nil {
			return err
		}
		if at < 0 {
			return e.db.AppendStreams(ctx, pid, sid)
		}
		return e.db.InsertStream(ctx, pid, sid, at)
	})
}

func runPlaylistRemove(ctx context.Context, rawPlaylist, rawIndex string) error {
	pid, err := parseID(rawPlaylist, "playlist")
	if err != nil {
		return err
	}
	index, err := parseIndex(rawIndex)
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		return e.db.RemoveAt(ctx, pid, index)
	})
}

func runPlaylistMove(ctx context.Context, rawPlaylist, rawFrom, rawTo string) error {
	pid, err := parseID(rawPlaylist, "playlist")
	if err != nil {
		return err
	}
	from, err := parseIndex(rawFrom)
	if err != nil {
		return err
	}
	to, err := parseIndex(rawTo)
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		return e.db.MoveStream(ctx, pid, from, to)
	})
}

func runPlaylistDedupe(ctx context.Context, rawPlaylist string) error {
	pid, err := parseID(rawPlaylist, "playlist")
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		removed, err := e.db.RemoveDuplicateStreams(ctx, pid)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d duplicate entries\n", removed)
		return nil
	})
}

func runPlaylistRename(ctx context.Context, rawPlaylist, name string) error {
	pid, err := parseID(rawPlaylist, "playlist")
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		return e.db.RenamePlaylist(ctx, pid, name)
	})
}

func runPlaylistDelete(ctx context.Context, rawPlaylist string) error {
	pid, err := parseID(rawPlaylist, "playlist")
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		return e.db.DeletePlaylist(ctx, pid)
	})
}

func runSubscribe(ctx context.Context, url string) error {
	return withEnv(func(e *env) error {
		ch, err := e.fetcher().FetchChannel(ctx, url)
		if err != nil {
			return err
		}
		sub, err := e.db.Subscribe(ctx, ch.Info)
		if err != nil {
			return err
		}
		fmt.Printf("subscribed to %s (%d)\n", orDash(sub.Name), sub.UID)
		return nil
	})
}

func runSubscriptions(ctx context.Context, jsonOutput bool) error {
	return withEnv(func(e *env) error {
		subs, err := e.db.ListSubscriptions(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(subs)
		}
		if len(subs) == 0 {
			fmt.Println("no subscriptions (add one: mediavault subscribe <channel-url>)")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSUBSCRIBERS\tNOTIFY\tURL")
		for _, s := range subs {
			count := "?"
			if s.SubscriberCount != nil {
				count = strconv.FormatInt(*s.SubscriberCount, 10)
			}
			notify := "off"
			if s.NotificationMode == catalog.NotificationModeEnabled {
				notify = "on"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.UID, orDash(s.Name), count, notify, orDash(s.URL))
		}
		return w.Flush()
	})
}

func runUnsubscribe(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, "subscription")
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		return e.db.Unsubscribe(ctx, id)
	})
}

func runNotify(ctx context.Context, rawID, state string) error {
	id, err := parseID(rawID, "subscription")
	if err != nil {
		return err
	}

	var mode catalog.NotificationMode
	switch state {
	case "on":
		mode = catalog.NotificationModeEnabled
	case "off":
		mode = catalog.NotificationModeDisabled
	default:
		return fmt.Errorf("notification state must be on or off, got %q", state)
	}

	return withEnv(func(e *env) error {
		return e.db.SetNotificationMode(ctx, id, mode)
	})
}

func runBookmark(ctx context.Context, url string) error {
	return withEnv(func(e *env) error {
		remote, err := e.fetcher().FetchPlaylist(ctx, url)
		if err != nil {
			return err
		}
		rp, err := e.db.BookmarkRemotePlaylist(ctx, remote.Info)
		if err != nil {
			return err
		}
		fmt.Printf("bookmarked %s (%d)\n", orDash(rp.Name), rp.UID)
		return nil
	})
}

func runUnbookmark(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, "remote playlist")
	if err != nil {
		return err
	}
	return withEnv(func(e *env) error {
		return e.db.DeleteRemotePlaylist(ctx, id)
	})
}

func runRefresh(ctx context.Context) error {
	return withEnv(func(e *env) error {
		report, err := e.scheduler().RefreshAll(ctx)
		fmt.Printf("refreshed %d subscriptions, %d remote playlists (%d updated, %d failed)\n",
			report.Subscriptions, report.RemotePlaylists, report.Updated, report.Failed)
		return err
	})
}

func runCompact(ctx context.Context) error {
	return withEnv(func(e *env) error {
		n, err := e.db.CompactAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("compacted %d playlists\n", n)
		return nil
	})
}

func runPrune(ctx context.Context) error {
	return withEnv(func(e *env) error {
		n, err := e.db.DeleteOrphanStreams(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d unreferenced streams\n", n)
		return nil
	})
}

// runServe starts the HTTP API, and the refresh scheduler when daemon is set.
func runServe(port int, daemon bool) error {
	return withEnv(func(e *env) error {
		if port == 0 {
			port = e.cfg.Server.Port
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		sched := e.scheduler()
		if daemon {
			go func() {
				if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					e.log.Error().Err(err).Msg("scheduler stopped")
				}
			}()
		}

		srv := server.New(e.db, sched, e.log, port)
		err := srv.ListenAndServe(ctx)
		e.log.Info().Msg("shutting down")
		return err
	})
}
