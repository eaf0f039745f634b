package main

import "testing"

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"run": false, "scan": false, "watch": false, "init": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestRunFlags(t *testing.T) {
	if runCmd.Flags().Lookup("dry-run") == nil {
		t.Error("run is missing --dry-run")
	}
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("root is missing --config")
	}
}
