package main

import (
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"go.ayling.dev/lrcside/cmd/internal/testing/testcmds"
)

func TestMain(m *testing.M) {
	testcmds.RegisterTransport()

	os.Exit(testscript.RunMain(m, map[string]func() int{
		"lrcside": func() int { main(); return 0 },
		"track":   func() int { testcmds.Track(); return 0 },
	}))
}

func TestScripts(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir:                 "testdata/scripts",
		RequireExplicitExec: true,
		Condition: func(cond string) (bool, error) {
			switch cond {
			case "ci":
				v, _ := strconv.ParseBool(os.Getenv("CI"))
				return v, nil
			}
			return false, fmt.Errorf("unknown cond")
		},
	})
}
