// i18nsync keeps the translation keys used in a JS/TS/Vue source file in
// sync with the locale table that backs them.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/i18nsync/config"
	"github.com/minios-linux/i18nsync/diff"
	"github.com/minios-linux/i18nsync/i18n"
	"github.com/minios-linux/i18nsync/langmeta"
	"github.com/minios-linux/i18nsync/session"
	"github.com/minios-linux/i18nsync/table"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// stderr receives status lines.
var stderr io.Writer = color.Error

func logInfo(format string, args ...any) {
	fmt.Fprintf(stderr, blue("[INFO]")+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(stderr, green("[OK]")+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(stderr, yellow("[WARN]")+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(stderr, red("[ERROR]")+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir     string
	dialectName string
	langFile    string
	verbose     bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18nsync",
		Short: "Keep translation key usages and locale tables in sync",
		Long: `i18nsync finds the translation keys a source file uses, loads the locale
table next to it, lets you edit that table and writes only the changes back,
keeping the comments, formatting and key order of the table file.

Dialects:
  sis    t('key') / $t('key') calls; lang.ts with cn and en bindings
  myth   $lang['key'] lookups; lang.cn.js and lang.en.js with a $lang binding

More dialects can be declared in .i18nsync.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory (.i18nsync.yaml, .env)")
	root.PersistentFlags().StringVar(&dialectName, "dialect", "", "Dialect to use (default from config, then sis)")
	root.PersistentFlags().StringVar(&langFile, "lang-file", "", "Explicit combined-layout locale table file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newExtractCmd(),
		newShowCmd(),
		newSetCmd(),
		newAddCmd(),
		newRmCmd(),
		newMergeCmd(),
		newShellCmd(),
		newDialectsCmd(),
		newVersionCmd(),
	)
	return root
}

func setupLogging(debug bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// openSession resolves the configuration and starts a session for file.
func openSession(file string) (*session.Service, session.View, error) {
	settings, err := config.Resolve(config.Options{Root: rootDir, Dialect: dialectName, LangFile: langFile})
	if err != nil {
		return nil, session.View{}, err
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, session.View{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, session.View{}, err
	}
	svc, view := session.Start(abs, settings.Dialect, settings.LangFile)
	return svc, view, nil
}

// save writes pending changes and reports the written files.
func save(svc *session.Service) error {
	if !svc.Dirty() {
		logInfo("%s", i18n.T("Nothing to save"))
		return nil
	}
	summary := svc.Diff().Summary()
	if _, err := svc.Save(); err != nil {
		if errors.Is(err, session.ErrMissingPath) {
			return fmt.Errorf("%w (%s)", err, i18n.T("create the table file or pass --lang-file"))
		}
		return err
	}
	for _, rep := range svc.LastSave() {
		verb := i18n.T("updated")
		if rep.Created {
			verb = i18n.T("created")
		}
		logSuccess("%s %s", verb, rep.Path)
	}
	logSuccess("%s: %s", i18n.T("Session saved"), summary)
	return nil
}

// ---------------------------------------------------------------------------
// extract
// ---------------------------------------------------------------------------

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "List the translation keys used in a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, view, err := openSession(args[0])
			if err != nil {
				return err
			}
			printUsages(cmd.OutOrStdout(), view.Usages)
			logInfo("%s", i18n.N("%d usage", "%d usages", len(view.Usages)))
			return nil
		},
	}
}

func printUsages(w io.Writer, usages []table.Usage) {
	for _, u := range usages {
		fmt.Fprintf(w, "%s:%d\t%s\n", u.File, u.Line, u.Key)
	}
}

// ---------------------------------------------------------------------------
// show
// ---------------------------------------------------------------------------

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show the usages of a source file and its locale table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, view, err := openSession(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printHeader(out, svc)
			renderTable(out, view)
			return nil
		},
	}
}

func printHeader(w io.Writer, svc *session.Service) {
	d := svc.Dialect()
	fmt.Fprintf(w, "%s %s (%s)\n", blue(i18n.T("Dialect:")), d.Name, d.Summary())
	paths := svc.Paths()
	if len(paths) == 0 {
		fmt.Fprintf(w, "%s %s\n", blue(i18n.T("Table:")), i18n.T("not found"))
		return
	}
	for _, loc := range table.Locales {
		state := ""
		if _, err := os.Stat(paths[loc]); err != nil {
			state = " " + yellow(i18n.T("(missing)"))
		}
		fmt.Fprintf(w, "%s %s%s\n", blue(string(loc)+":"), paths[loc], state)
	}
}

// renderTable prints the locale table. Keys used in the source file are
// marked; usage keys missing from the table are listed after it.
func renderTable(w io.Writer, view session.View) {
	used := make(map[string]bool)
	for _, u := range view.Usages {
		used[u.Key] = true
	}

	tw := tablewriter.NewWriter(w)
	header := []string{"", i18n.T("Key")}
	for _, loc := range table.Locales {
		header = append(header, langmeta.Resolve(string(loc)).Label())
	}
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for _, e := range view.Table.Entries() {
		mark := ""
		if used[e.Key] {
			mark = "*"
		}
		row := []string{mark, e.Key}
		for _, loc := range table.Locales {
			row = append(row, e.Value(loc))
		}
		tw.Append(row)
	}
	tw.Render()

	var missing []string
	for _, key := range table.Keys(view.Usages) {
		if !view.Table.Has(key) {
			missing = append(missing, key)
		}
	}
	fmt.Fprintf(w, "%s, %s\n",
		i18n.N("%d entry", "%d entries", view.Table.Len()),
		i18n.N("%d usage", "%d usages", len(view.Usages)))
	if len(missing) > 0 {
		fmt.Fprintf(w, "%s %s\n", yellow(i18n.T("Not in table:")), strings.Join(missing, ", "))
	}
}

// ---------------------------------------------------------------------------
// set / add / rm
// ---------------------------------------------------------------------------

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <key> <locale> <value>",
		Short: "Set the value of a key in one locale and save",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := table.ParseLocale(args[2])
			if err != nil {
				return err
			}
			svc, _, err := openSession(args[0])
			if err != nil {
				return err
			}
			if _, err := svc.Edit(args[1], loc, args[3]); err != nil {
				return err
			}
			return save(svc)
		},
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file> <key>...",
		Short: "Add keys seeded with placeholders and save",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openSession(args[0])
			if err != nil {
				return err
			}
			for _, key := range args[1:] {
				if _, err := svc.Add(key); err != nil {
					if errors.Is(err, session.ErrExists) {
						logWarning("%v", err)
						continue
					}
					return err
				}
			}
			return save(svc)
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file> <key>...",
		Short: "Remove keys from every locale and save",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openSession(args[0])
			if err != nil {
				return err
			}
			for _, key := range args[1:] {
				if _, err := svc.DeleteEntry(key); err != nil {
					logWarning("%v", err)
				}
			}
			return save(svc)
		},
	}
}

// ---------------------------------------------------------------------------
// merge
// ---------------------------------------------------------------------------

func newMergeCmd() *cobra.Command {
	var dryRun bool
	var format string
	cmd := &cobra.Command{
		Use:   "merge <file>",
		Short: "Add every used key missing from the table and save",
		Long: `Add an entry for every key the source file uses that the locale table
lacks, seeded with the dialect's placeholders, then save.

With --dry-run the pending changes are printed instead of written, either as
text or as one RFC 7386 JSON merge patch per locale.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "merge-patch" {
				return fmt.Errorf("unknown format %q (valid: text, merge-patch)", format)
			}
			svc, _, err := openSession(args[0])
			if err != nil {
				return err
			}
			_, n := svc.Merge()
			logInfo("%s", i18n.N("%d key added", "%d keys added", n))
			if dryRun {
				return printDiff(cmd.OutOrStdout(), svc, format)
			}
			return save(svc)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the changes instead of writing them")
	cmd.Flags().StringVar(&format, "format", "text", "Dry-run output format: text or merge-patch")
	return cmd
}

// printDiff prints the pending changes of svc.
func printDiff(w io.Writer, svc *session.Service, format string) error {
	r := svc.Diff()
	if r.Empty() {
		fmt.Fprintln(w, i18n.T("No changes"))
		return nil
	}
	if format == "merge-patch" {
		for _, loc := range table.Locales {
			patch, err := svc.MergePatch(loc)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "# %s\n%s\n", loc, patch)
		}
		return nil
	}
	printResult(w, r)
	return nil
}

func printResult(w io.Writer, r diff.Result) {
	fmt.Fprint(w, r.Text())
	fmt.Fprintln(w, r.Summary())
}

// ---------------------------------------------------------------------------
// dialects
// ---------------------------------------------------------------------------

func newDialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the available dialects",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Resolve(config.Options{Root: rootDir, Dialect: dialectName, LangFile: langFile})
			if err != nil {
				return err
			}
			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"", i18n.T("Name"), i18n.T("Layout"), i18n.T("Files"), i18n.T("Description")})
			tw.SetAutoFormatHeaders(false)
			tw.SetAutoWrapText(false)
			for _, name := range settings.Registry.Names() {
				d, _ := settings.Registry.Get(name)
				mark := ""
				if name == settings.Dialect.Name {
					mark = "*"
				}
				tw.Append([]string{mark, d.Name, string(d.Layout), d.Summary(), d.Description})
			}
			tw.Render()
			if settings.ConfigPath != "" {
				logInfo("%s", i18n.Tf("Config: %s", settings.ConfigPath))
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "i18nsync version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}
