package cli

import (
	"bytes"
	"context"
	"slices"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"generate", "dive", "refine", "layout", "render", "explore", "views", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command missing %q (have %v)", want, names)
		}
	}
}

func TestExecuteVersion(t *testing.T) {
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("conceptmap version")) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	if err := Execute(context.Background(), &stderr, []string{"frobnicate"}); err == nil {
		t.Error("Execute(frobnicate) = nil, want error")
	}
}
