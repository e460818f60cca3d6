package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/brewcache"
	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/shellsync"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the local PHP setup",
		Long: `Doctor runs the checks phpswitch relies on and reports what it finds:
Homebrew reachability, installed runtimes, link and PATH consistency,
the shell startup file, php-fpm services, and the version cache.

It exits non-zero when a check fails outright; advisory findings are
printed as warnings and do not affect the exit code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			return runDoctor(cmd, eng)
		},
	}
}

func runDoctor(cmd *cobra.Command, eng *engine) error {
	ctx := cmd.Context()
	problems := 0
	fail := func(format string, args ...any) {
		problems++
		printError(format, args...)
	}

	prefix, err := eng.brew.Prefix(ctx)
	if err != nil {
		fail("Homebrew is not reachable: %s", errors.UserMessage(err))
		printHint(errors.GetSuggestion(err))
		// Every other check talks to brew, so stop here.
		return fmt.Errorf("%d problem(s) found", problems)
	}
	printSuccess("Homebrew at %s", prefix)

	installed, err := eng.registry.Installed(ctx)
	switch {
	case err != nil:
		fail("cannot list installed versions: %s", errors.UserMessage(err))
		printHint(errors.GetSuggestion(err))
	case len(installed) == 0:
		printWarning("no PHP versions installed")
		printNextStep("install one", "phpswitch install <version>")
	default:
		printSuccess("%d PHP version(s) installed", len(installed))
	}

	active := eng.resolver.Active(ctx)
	if active.Linked.IsUnknown() {
		printWarning("no PHP version is linked")
		if len(installed) > 0 {
			printNextStep("link one", "phpswitch switch <version>")
		}
	} else {
		printSuccess("%s is linked as php", active.Linked.Formula)
	}

	switch {
	case active.PathMismatch && active.BinaryPath == "":
		fail("no php binary is visible on PATH")
		printHint(fmt.Sprintf("add %s/bin to PATH, or run `phpswitch switch %s`", prefix, active.Linked.ID))
	case active.PathMismatch:
		fail("PATH resolves php to %s, not the linked %s", active.BinaryPath, active.Linked.Formula)
		printNextStep("repair the startup file", "phpswitch switch "+active.Linked.ID)
	case active.BinaryPath != "":
		printSuccess("php on PATH is %s (%s)", active.Version, StyleDim.Render(active.BinaryPath))
	}

	shell := shellsync.Detect()
	dialect := shellsync.DialectFor(shell)
	if shell == shellsync.Unknown {
		printWarning("cannot tell the login shell from $SHELL; assuming the %s dialect", dialect.Name())
	} else {
		printSuccess("login shell is %s", shell)
	}

	hasBlock, startupFile, err := eng.shell.HasBlock(dialect)
	switch {
	case err != nil:
		fail("cannot read %s: %s", startupFile, errors.UserMessage(err))
	case hasBlock:
		printSuccess("managed block present in %s", startupFile)
	default:
		printWarning("no managed block in %s yet", startupFile)
		printNextStep("create it", "phpswitch switch <version>")
	}

	svcs, err := eng.services.List(ctx)
	if err != nil {
		printWarning("cannot list php-fpm services: %s", errors.UserMessage(err))
	} else {
		var running []string
		strayRunning := false
		for _, svc := range svcs {
			if !svc.Running {
				continue
			}
			running = append(running, svc.Name)
			if svc.Version.ID != active.Linked.ID {
				strayRunning = true
			}
		}
		target := active.Linked.ID
		if active.Linked.IsUnknown() {
			target = "<version>"
		}
		switch {
		case len(running) == 0:
			printInfo("no php-fpm service is running")
		case strayRunning:
			printWarning("running services do not match the linked version: %s", strings.Join(running, ", "))
			printNextStep("reconcile them", "phpswitch switch "+target)
		default:
			printSuccess("php-fpm running for the linked version (%s)", strings.Join(running, ", "))
		}
	}

	snap, state := eng.store.Load()
	switch state {
	case brewcache.Fresh:
		printInfo("version cache is fresh (%s old)", snap.Age().Round(time.Second))
	case brewcache.Stale:
		printInfo("version cache is stale (%s old); the next list refreshes it", snap.Age().Round(time.Minute))
	default:
		printInfo("version cache is empty; the next list fills it")
	}

	printNewline()
	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}
	printSuccess("No problems found")
	return nil
}
