package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/relgraph/dialect/sql/schema"
	"github.com/syssam/relgraph/schema/load"
)

// ddlCmd prints the CREATE TABLE statements of a declaration file.
func ddlCmd(opts *options) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "ddl <schema.yaml>",
		Short: "Print CREATE TABLE statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, out := args[0], cmd.OutOrStdout()
			if !watch {
				return renderDDL(out, path, opts.dialect)
			}
			w, err := newFileWatcher(path)
			if err != nil {
				return err
			}
			defer w.Close()
			if err := renderDDL(out, path, opts.dialect); err != nil {
				opts.logger.Error("render failed", "path", path, "error", err)
			}
			opts.logger.Info("watching for changes", "path", path)
			return w.Run(cmd.Context(), func() {
				fmt.Fprintln(out)
				if err := renderDDL(out, path, opts.dialect); err != nil {
					opts.logger.Error("render failed", "path", path, "error", err)
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render when the file changes")
	return cmd
}

func renderDDL(w io.Writer, path, dialectName string) error {
	reg, err := load.LoadFile(path)
	if err != nil {
		return err
	}
	tables, err := schema.Tables(reg)
	if err != nil {
		return err
	}
	stmts, err := schema.Statements(dialectName, tables)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if _, err := fmt.Fprintln(w, s+";"); err != nil {
			return err
		}
	}
	return nil
}

// fileWatcher reports changes of a single file. It watches the parent
// directory, so files replaced by rename (as most editors save) are still seen.
type fileWatcher struct {
	w    *fsnotify.Watcher
	name string
}

func newFileWatcher(path string) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &fileWatcher{w: w, name: abs}, nil
}

// Run calls fn for every write to the file until ctx is done.
func (f *fileWatcher) Run(ctx context.Context, fn func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-f.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				fn()
			}
		case err, ok := <-f.w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "path", f.name, "error", err)
		}
	}
}

// Close stops watching.
func (f *fileWatcher) Close() error { return f.w.Close() }
