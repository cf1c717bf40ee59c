package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mediavault",
		Short:         "Local catalog of streams, playlists and channel subscriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(playlistsCmd())
	root.AddCommand(playlistCmd())
	root.AddCommand(subscribeCmd())
	root.AddCommand(subscriptionsCmd())
	root.AddCommand(unsubscribeCmd())
	root.AddCommand(notifyCmd())
	root.AddCommand(bookmarkCmd())
	root.AddCommand(unbookmarkCmd())
	root.AddCommand(refreshCmd())
	root.AddCommand(compactCmd())
	root.AddCommand(pruneCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func playlistsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "List local and bookmarked playlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylists(cmd.Context(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func playlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Create and edit local playlists",
	}

	cmd.AddCommand(playlistCreateCmd())
	cmd.AddCommand(playlistShowCmd())
	cmd.AddCommand(playlistImportCmd())
	cmd.AddCommand(playlistInsertCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <playlist> <index>",
		Short: "Remove the entry at index and close the gap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistRemove(cmd.Context(), args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "move <playlist> <from> <to>",
		Short: "Move the entry at from to position to",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistMove(cmd.Context(), args[0], args[1], args[2])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "dedupe <playlist>",
		Short: "Drop repeated streams, keeping the first occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistDedupe(cmd.Context(), args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <playlist> <name>",
		Short: "Rename a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistRename(cmd.Context(), args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <playlist>",
		Short: "Delete a playlist and its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistDelete(cmd.Context(), args[0])
		},
	})

	return cmd
}

func playlistCreateCmd() *cobra.Command {
	var thumbnail string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistCreate(cmd.Context(), args[0], thumbnail)
		},
	}

	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "thumbnail url")
	return cmd
}

func playlistShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <playlist>",
		Short: "Show the streams of a playlist in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistShow(cmd.Context(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func playlistImportCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <playlist-or-feed-url>",
		Short: "Create a local playlist from the entries of a remote playlist feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistImport(cmd.Context(), args[0], name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "playlist name (default: remote title)")
	return cmd
}

func playlistInsertCmd() *cobra.Command {
	var at int

	cmd := &cobra.Command{
		Use:   "insert <playlist> <stream>",
		Short: "Add a stored stream to a playlist, appending unless --at is given",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylistInsert(cmd.Context(), args[0], args[1], at)
		},
	}

	cmd.Flags().IntVar(&at, "at", -1, "position to insert at")
	return cmd
}

func subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <channel-url>",
		Short: "Subscribe to a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscribe(cmd.Context(), args[0])
		},
	}
}

func subscriptionsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscriptions(cmd.Context(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func unsubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <subscription>",
		Short: "Remove a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnsubscribe(cmd.Context(), args[0])
		},
	}
}

func notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "notify <subscription> on|off",
		Short:     "Enable or disable new-upload notifications for a subscription",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotify(cmd.Context(), args[0], args[1])
		},
	}
}

func bookmarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark <playlist-url>",
		Short: "Bookmark a remote playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBookmark(cmd.Context(), args[0])
		},
	}
}

func unbookmarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unbookmark <remote-playlist>",
		Short: "Remove a remote playlist bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnbookmark(cmd.Context(), args[0])
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh subscriptions and remote playlists once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd.Context())
		},
	}
}

func compactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Renumber playlists whose positions have gaps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(cmd.Context())
		},
	}
}

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete streams that no playlist references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd.Context())
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, false)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with refresh scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, true)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
