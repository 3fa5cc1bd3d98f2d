// Package cli implements the quotesync command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/littleironwaltz/quotesync/config"
	"github.com/littleironwaltz/quotesync/internal/domain"
	"github.com/littleironwaltz/quotesync/internal/usecase"
)

// DefaultExportFile is written by export when no path is given
const DefaultExportFile = "quotes.json"

// Options controls where commands read configuration and write output
type Options struct {
	Out        io.Writer
	Err        io.Writer
	In         io.Reader
	LoadConfig func() (*config.Config, error)
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *App {
	return cmd.Context().Value(appKey{}).(*App)
}

// appHolder keeps the App built by the pre-run hook so it can be closed
// after the command returns, including when it fails.
type appHolder struct {
	app *App
}

func (h *appHolder) close() error {
	if h.app == nil {
		return nil
	}
	err := h.app.Close()
	h.app = nil
	return err
}

// Run builds the command tree, executes it with args and closes the store
func Run(ctx context.Context, opts Options, args []string) error {
	holder := &appHolder{}
	root := newRootCommand(opts, holder)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return multierr.Append(err, holder.close())
}

// NewRootCommand builds the command tree
func NewRootCommand(opts Options) *cobra.Command {
	return newRootCommand(opts, &appHolder{})
}

func newRootCommand(opts Options, holder *appHolder) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.New
	}

	root := &cobra.Command{
		Use:   "quotesync",
		Short: "Show, collect and sync quotes",
		Long: `quotesync keeps a local collection of quotes, shows a random one
filtered by category, and merges it with a remote server using
last-writer-wins on each quote's timestamp.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			app, err := NewApp(cmd.Context(), cfg, opts.Out)
			if err != nil {
				return err
			}
			holder.app = app
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return holder.close()
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.AddCommand(
		newShowCommand(),
		newCategoriesCommand(),
		newFilterCommand(),
		newAddCommand(),
		newImportCommand(opts.In),
		newExportCommand(opts.Out),
		newSyncCommand(),
		newRunCommand(),
	)
	return root
}

// Execute runs the command line with the process arguments and returns the exit code
func Execute(ctx context.Context) int {
	if err := Run(ctx, Options{}, os.Args[1:]); err != nil {
		return 1
	}
	return 0
}

func newShowCommand() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a random quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRandom(appFrom(cmd), category)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category to pick from (default: saved filter)")
	return cmd
}

func showRandom(app *App, category string) error {
	quote, err := app.quotes.RandomQuote(category)
	if errors.Is(err, usecase.ErrNoQuotes) {
		if category == "" {
			category = app.quotes.SelectedCategory()
		}
		app.presenter.ShowEmpty(category)
		return nil
	}
	if err != nil {
		return err
	}
	app.presenter.ShowQuote(*quote)
	return nil
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			app.presenter.ShowCategories(app.quotes.Categories(), app.quotes.SelectedCategory())
			return nil
		},
	}
}

func newFilterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "filter [category]",
		Short: "Show or change the saved category filter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if len(args) == 0 {
				app.presenter.Notify("Current filter: " + app.quotes.SelectedCategory())
				return nil
			}
			if err := app.quotes.SetCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.presenter.Notify("Filter set to " + app.quotes.SelectedCategory())
			return showRandom(app, "")
		},
	}
}

func newAddCommand() *cobra.Command {
	var text, category string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if _, err := app.quotes.AddQuote(cmd.Context(), text, category); err != nil {
				if errors.Is(err, domain.ErrInvalidQuote) {
					return fmt.Errorf("please fill in both text and category to add a quote: %w", err)
				}
				return err
			}
			app.presenter.Notify("Quote added successfully!")
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "quote text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "quote category")
	return cmd
}

func newImportCommand(stdin io.Reader) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import quotes from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			in := stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open import file: %w", err)
				}
				defer f.Close()
				in = f
			}

			n, err := app.quotes.ImportQuotes(cmd.Context(), in)
			if err != nil {
				return err
			}
			app.presenter.Notify(fmt.Sprintf("Quotes imported successfully! (%d)", n))
			return nil
		},
	}
}

func newExportCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export all quotes as JSON (- for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			path := DefaultExportFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				return app.quotes.ExportQuotes(cmd.Context(), stdout)
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := app.quotes.ExportQuotes(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close export file: %w", err)
			}
			app.presenter.Notify("Quotes exported to " + path)
			return nil
		},
	}
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge quotes from the server once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.HTTPTimeout)
			defer cancel()

			result, err := app.quotes.Sync(ctx)
			if err != nil {
				return err
			}
			app.logger.WithField("total", result.Total).Debug("sync finished")
			return nil
		},
	}
}

func newRunCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Show a quote and keep syncing until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			every := app.cfg.SyncInterval
			if interval > 0 {
				every = interval
			}

			if err := showRandom(app, ""); err != nil {
				return err
			}

			syncer := usecase.NewSyncer(app.quotes, every, app.cfg.HTTPTimeout, app.logger)
			if err := syncer.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			syncer.Stop()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "sync interval (default: SYNC_INTERVAL)")
	return cmd
}
