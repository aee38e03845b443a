package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ardnew/ndfkit/pkg"
)

// Version prints version information.
type Version struct {
	Short bool `help:"Print only the version number." short:"s"`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	out := stdout(ctx)

	if v.Short {
		_, err := fmt.Fprintln(out, pkg.Version)

		return err
	}

	_, err := fmt.Fprintf(out, "%s %s (%s %s/%s)\n",
		pkg.Name, pkg.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}
