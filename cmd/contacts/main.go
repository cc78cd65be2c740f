// main is the entry point of the contacts application.
//
// The binary is a thin adapter over contactstore.Store. Every subcommand
// follows the same sequence:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the storage backend and load the contact book
//  4. Run one operation (or serve HTTP until a signal arrives)
//  5. Save and close the store
//
// Usage:
//
//	contacts --config=config/local.yaml list
//	contacts --config=config/local.yaml add Bob 5551234 bob@x.com
//	CONFIG_PATH=config/local.yaml contacts serve
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/contacts/internal/config"
	"github.com/aanand-mishra/contacts/internal/contactstore"
	"github.com/aanand-mishra/contacts/internal/storage"
	"github.com/aanand-mishra/contacts/internal/storage/jsonfile"
	"github.com/aanand-mishra/contacts/internal/storage/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the root has run.
type app struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "contacts",
		Short:        "A small contact book: add, edit, delete, list and search contacts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			// Table output owns stdout; only the server logs there.
			logOut := cmd.ErrOrStderr()
			if cmd.Name() == "serve" {
				logOut = cmd.OutOrStdout()
			}
			a.log = setupLogger(cfg.Env, logOut)
			slog.SetDefault(a.log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the configuration YAML file (or CONFIG_PATH)")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
	)
	return root
}

// openStore opens the configured backend and loads the contact book.
//
// When the persisted data is unreadable the default is to refuse to start.
// With reset_unreadable set the bad file is renamed to <path>.corrupt and
// the session starts with an empty book.
func (a *app) openStore() (*contactstore.Store, error) {
	store, err := a.tryOpen()
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, storage.ErrUnreadable) || !a.cfg.ResetUnreadable {
		return nil, err
	}

	path := a.cfg.StoragePath
	if a.cfg.StorageBackend == config.BackendSQLite {
		// Drop driver options such as ?_busy_timeout=... from the DSN.
		path, _, _ = strings.Cut(path, "?")
	}
	aside := path + ".corrupt"
	a.log.Warn("contact store is unreadable, starting with an empty book",
		slog.String("path", path),
		slog.String("moved_to", aside),
		slog.String("error", err.Error()))
	if err := os.Rename(path, aside); err != nil {
		return nil, fmt.Errorf("move unreadable store aside: %w", err)
	}
	return a.tryOpen()
}

func (a *app) tryOpen() (*contactstore.Store, error) {
	st, err := a.newStorage()
	if err != nil {
		return nil, err
	}
	store, err := contactstore.Open(st, a.log)
	if err != nil {
		st.Close()
		return nil, err
	}
	a.log.Debug("storage initialised",
		slog.String("backend", a.cfg.StorageBackend),
		slog.String("path", a.cfg.StoragePath),
		slog.Int("contacts", store.Len()))
	return store, nil
}

func (a *app) newStorage() (storage.Storage, error) {
	if a.cfg.StorageBackend == config.BackendSQLite {
		db, err := sqlite.New(a.cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return jsonfile.New(a.cfg.StoragePath), nil
}

// closeStore saves and releases the store, logging instead of failing so
// the command's own error (if any) is the one reported.
func (a *app) closeStore(store *contactstore.Store) {
	if err := store.Close(); err != nil {
		a.log.Error("failed to save contacts on exit", slog.String("error", err.Error()))
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// dev (and anything unrecognised): text at DEBUG
// staging: JSON at DEBUG
// prod: JSON at INFO
func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
