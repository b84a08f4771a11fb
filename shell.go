package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/minios-linux/i18nsync/i18n"
	"github.com/minios-linux/i18nsync/session"
	"github.com/minios-linux/i18nsync/table"
)

// ---------------------------------------------------------------------------
// shell (interactive session)
// ---------------------------------------------------------------------------

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <file>",
		Short: "Edit the locale table of a source file interactively",
		Long: `Start an interactive session for a source file. Changes stay in memory
until "save". Type "help" for the list of commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, view, err := openSession(args[0])
			if err != nil {
				return err
			}
			sh := &shell{svc: svc, out: cmd.OutOrStdout()}
			printHeader(sh.out, svc)
			fmt.Fprintln(sh.out, i18n.N("%d usage", "%d usages", len(view.Usages)))
			return sh.run(cmd.InOrStdin())
		},
	}
}

const shellHelp = `Commands:
  list                      show the usages of the source file
  table                     show the locale table
  edit <key> <locale> <v>   set the value of key in locale (zh, en)
  add <key>                 add key seeded with placeholders
  rm <key>                  remove key from the table
  rm-usage <key>            drop the usages of key
  merge                     add every used key missing from the table
  diff [merge-patch]        show unsaved changes
  save                      write unsaved changes
  reload                    discard unsaved changes and re-read from disk
  help                      show this help
  quit                      leave (twice if there are unsaved changes)
Arguments with spaces can be quoted with ' or " or escaped with \.
A word starting with # begins a comment.`

type shell struct {
	svc *session.Service
	out io.Writer
	// quitArmed is set after a quit was refused because of unsaved changes.
	quitArmed bool
}

func (sh *shell) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, "i18nsync> ")
		if !sc.Scan() {
			fmt.Fprintln(sh.out)
			if sh.svc.Dirty() {
				logWarning("%s", i18n.T("Unsaved changes discarded"))
			}
			return sc.Err()
		}
		args, err := shlex.Split(sc.Text())
		if err != nil {
			logError("%v", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		done, err := sh.exec(args)
		if err != nil {
			logError("%v", err)
		}
		if done {
			return nil
		}
	}
}

// exec runs one command and reports whether the shell should exit.
func (sh *shell) exec(args []string) (bool, error) {
	name, args := args[0], args[1:]
	if name != "quit" && name != "exit" && name != "q" {
		sh.quitArmed = false
	}
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s: %s", name, i18n.N("expects %d argument", "expects %d arguments", n))
		}
		return nil
	}

	switch name {
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
	case "list", "ls":
		printUsages(sh.out, sh.svc.View().Usages)
	case "table":
		renderTable(sh.out, sh.svc.View())
	case "edit", "set":
		if err := need(3); err != nil {
			return false, err
		}
		loc, err := table.ParseLocale(args[1])
		if err != nil {
			return false, err
		}
		if _, err := sh.svc.Edit(args[0], loc, args[2]); err != nil {
			return false, err
		}
	case "add":
		if err := need(1); err != nil {
			return false, err
		}
		if _, err := sh.svc.Add(args[0]); err != nil {
			return false, err
		}
	case "rm":
		if err := need(1); err != nil {
			return false, err
		}
		if _, err := sh.svc.DeleteEntry(args[0]); err != nil {
			return false, err
		}
	case "rm-usage":
		if err := need(1); err != nil {
			return false, err
		}
		if _, err := sh.svc.DeleteUsage(args[0]); err != nil {
			return false, err
		}
	case "merge":
		_, n := sh.svc.Merge()
		fmt.Fprintln(sh.out, i18n.N("%d key added", "%d keys added", n))
	case "diff":
		format := "text"
		if len(args) > 0 {
			format = args[0]
		}
		if format != "text" && format != "merge-patch" {
			return false, fmt.Errorf("unknown format %q (valid: text, merge-patch)", format)
		}
		return false, printDiff(sh.out, sh.svc, format)
	case "save":
		return false, save(sh.svc)
	case "reload":
		view := sh.svc.Reload()
		fmt.Fprintf(sh.out, "%s, %s\n",
			i18n.N("%d entry", "%d entries", view.Table.Len()),
			i18n.N("%d usage", "%d usages", len(view.Usages)))
	case "quit", "exit", "q":
		if sh.svc.Dirty() && !sh.quitArmed {
			sh.quitArmed = true
			logWarning("%s", i18n.T("Unsaved changes; quit again to discard them"))
			return false, nil
		}
		return true, nil
	default:
		return false, fmt.Errorf("%s: %q (%s)", i18n.T("unknown command"), name, i18n.T("type help"))
	}
	return false, nil
}
