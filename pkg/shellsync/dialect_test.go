package shellsync

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectFrom(t *testing.T) {
	tests := []struct {
		env  string
		want Shell
	}{
		{"/bin/bash", Bash},
		{"/usr/local/bin/bash", Bash},
		{"/bin/zsh", Zsh},
		{"/opt/homebrew/bin/fish", Fish},
		{"/bin/tcsh", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := detectFrom(tt.env); got != tt.want {
				t.Errorf("detectFrom(%q) = %v, want %v", tt.env, got, tt.want)
			}
		})
	}
}

func TestDialectStartupFiles(t *testing.T) {
	home := "/home/dev"
	tests := []struct {
		shell Shell
		name  string
		file  string
	}{
		{Bash, "bash", filepath.Join(home, ".bashrc")},
		{Zsh, "zsh", filepath.Join(home, ".zshrc")},
		{Fish, "fish", filepath.Join(home, ".config", "fish", "config.fish")},
		{Unknown, "profile", filepath.Join(home, ".profile")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DialectFor(tt.shell)
			if d.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.name)
			}
			if got := d.StartupFile(home); got != tt.file {
				t.Errorf("StartupFile() = %q, want %q", got, tt.file)
			}
		})
	}
}

func TestRenderBlock(t *testing.T) {
	bin, sbin := "/opt/homebrew/opt/php@8.1/bin", "/opt/homebrew/opt/php@8.1/sbin"

	posix := DialectFor(Zsh).RenderBlock(bin, sbin)
	if len(posix) != 1 || posix[0] != `export PATH="`+bin+`:`+sbin+`:$PATH"` {
		t.Errorf("posix block = %q", posix)
	}

	fish := DialectFor(Fish).RenderBlock(bin, sbin)
	if len(fish) != 1 || !strings.HasPrefix(fish[0], "set -gx PATH ") {
		t.Errorf("fish block = %q", fish)
	}
}

func TestPosixValidate(t *testing.T) {
	d := DialectFor(Zsh).(posixDialect)

	good := renderManaged(d, "/opt/x/bin", "/opt/x/sbin")
	if err := d.Validate(good); err != nil {
		t.Errorf("Validate(rendered block) = %v, want nil", err)
	}

	bad := []string{`export PATH="unterminated`}
	if err := d.Validate(bad); err == nil {
		t.Error("Validate(broken line) = nil, want error")
	}
}
