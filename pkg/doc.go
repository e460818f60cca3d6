// Package pkg provides the core libraries for phpswitch PHP version management.
//
// # Overview
//
// phpswitch keeps three places in agreement about which PHP runs on a
// developer machine: the Homebrew link (<prefix>/bin/php), the shell
// startup file (PATH order), and the php-fpm service list. The pkg
// directory is organized into four main areas:
//
//  1. Domain model ([phpver], [errors]) - version identities and coded errors
//  2. Homebrew access ([execx], [brew], [brewcache], [registry]) - subprocess
//     plumbing, the brew client, and the cached version catalog
//  3. State inspection and mutation ([resolver], [shellsync], [services],
//     [project], [config]) - what is active, and the files and services
//     phpswitch edits
//  4. Orchestration ([switcher]) - the staged switch pipeline used by the CLI
//
// # Architecture
//
// The typical flow of a switch:
//
//	CLI command
//	     ↓
//	[switcher] package (validate → install → link → sync shell → services → verify)
//	     ↓
//	[brew] + [registry] (Homebrew)   [shellsync] (startup file)   [services] (php-fpm)
//	     ↓
//	[execx] package (subprocess runner, fakeable in tests)
//
// # Quick Start
//
// Switch the active runtime to PHP 8.3:
//
//	import (
//	    "context"
//
//	    "github.com/phpswitch/phpswitch/pkg/brew"
//	    "github.com/phpswitch/phpswitch/pkg/brewcache"
//	    "github.com/phpswitch/phpswitch/pkg/config"
//	    "github.com/phpswitch/phpswitch/pkg/execx"
//	    "github.com/phpswitch/phpswitch/pkg/phpver"
//	    "github.com/phpswitch/phpswitch/pkg/registry"
//	    "github.com/phpswitch/phpswitch/pkg/resolver"
//	    "github.com/phpswitch/phpswitch/pkg/services"
//	    "github.com/phpswitch/phpswitch/pkg/shellsync"
//	    "github.com/phpswitch/phpswitch/pkg/switcher"
//	)
//
//	cfg, _ := config.Load()
//	runner := execx.NewSystem(nil)
//	b := brew.New(runner, nil)
//	store, _ := brewcache.NewDefaultStore()
//	sh, _ := shellsync.New(cfg, nil)
//
//	sw := switcher.New(switcher.Deps{
//	    Registry: registry.New(b, store, nil),
//	    Brew:     b,
//	    Shell:    sh,
//	    Services: services.NewManager(runner, nil),
//	    Resolver: resolver.New(b, runner, nil),
//	    Config:   cfg,
//	})
//
//	v, _ := phpver.FromID("8.3")
//	report := sw.Switch(context.Background(), switcher.Request{Version: v})
//
// # Main Packages
//
// [phpver] - PHP version identities. Parses "8.1", "default", formula names
// ("php@8.1"), and `php -v` banners into one comparable Version value.
//
// [execx] - Subprocess execution with timeouts, logging, and a scriptable
// fake runner for tests. Everything that shells out goes through it.
//
// [brew] - The Homebrew client: list installed runtimes, search available
// ones, link, unlink, install, uninstall.
//
// [brewcache] - TTL snapshot store for the available-version catalog, with
// flock-guarded atomic writes and stale fallback when brew is unreachable.
//
// [registry] - The version catalog combining [brew] queries with the
// [brewcache] snapshot. Answers "what is installed" and "what could be".
//
// [resolver] - Determines the linked runtime and the one PATH actually
// executes, and detects shadowing by real-path comparison.
//
// [shellsync] - Managed-block edits to shell startup files (zsh, bash,
// fish, profile) with syntax validation, backups, and atomic replace.
//
// [services] - php-fpm service reconciliation via `brew services`.
//
// [project] - Per-project version pins (.php-version files) found by
// walking from a directory toward the filesystem root.
//
// [switcher] - The staged switch pipeline tying all of the above together
// into one Report.
//
// [config] - The ~/.phpswitch.conf dotfile (auto_restart_service,
// backup_enabled, max_backups, default_version).
//
// [errors] - Coded errors with user messages and fix suggestions.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/switcher/...  # Specific package
//
// Most packages accept an [execx.Runner]; tests use [execx.FakeRunner] to
// script brew output instead of invoking Homebrew.
//
// [phpver]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/phpver
// [execx]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/execx
// [brew]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/brew
// [brewcache]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/brewcache
// [registry]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/registry
// [resolver]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/resolver
// [shellsync]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/shellsync
// [services]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/services
// [project]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/project
// [switcher]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/switcher
// [config]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/config
// [errors]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/buildinfo
// [execx.Runner]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/execx#Runner
// [execx.FakeRunner]: https://pkg.go.dev/github.com/phpswitch/phpswitch/pkg/execx#FakeRunner
package pkg
