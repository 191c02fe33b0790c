// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jwmatthews/deep-research-agent/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List past research sessions or show one in detail",
	Long: `History lists completed research sessions, newest first. With a session
id it prints that session's report; add --log to include the full
node-by-node conversation log.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of sessions to list")
	historyCmd.Flags().Bool("log", false, "include the conversation log when showing a session")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadAgentConfig()
	if cfg.Store.Disabled {
		return fmt.Errorf("session history is disabled (store.disabled is set)")
	}

	store, err := session.NewStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}
		showLog, _ := cmd.Flags().GetBool("log")
		return showSession(cmd, store, id, showLog)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	return listSessions(cmd, store, limit)
}

func listSessions(cmd *cobra.Command, store *session.Store, limit int) error {
	sessions, err := store.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tPHASE\tQUERY")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Phase, s.Query)
	}
	return w.Flush()
}

func showSession(cmd *cobra.Command, store *session.Store, id int64, showLog bool) error {
	sess, log, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Session %d  (%s)\n", sess.ID, sess.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Query: %s\n", sess.Query)
	fmt.Printf("Phase: %s\n", sess.Phase)
	if sess.Failure != "" {
		fmt.Printf("Failure: %s\n", sess.Failure)
	}
	if sess.RetryCount > 0 {
		fmt.Printf("Search retries: %d\n", sess.RetryCount)
	}

	if sess.Report != nil {
		fmt.Println()
		printTextReport(os.Stdout, sess.Report)
	}

	if showLog && len(log) > 0 {
		fmt.Println("\nConversation log:")
		for _, ex := range log {
			fmt.Printf("  [%s] %s: %s\n", ex.At.Local().Format("15:04:05"), ex.Node, ex.Content)
		}
	}
	return nil
}
