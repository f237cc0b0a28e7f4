// Package assets renumbers an exported image sequence into the frame_N
// naming the frame store expects.
package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	_ "golang.org/x/image/webp"
)

// Options controls which files are picked up and what Prepare does with them.
type Options struct {
	// Extensions lists accepted suffixes, matched case-sensitively.
	// Empty means ".jpg".
	Extensions []string
	// Pattern names the output files. Empty means "frame_%d.jpg".
	Pattern string
	// Verify decodes each image header and fails on unreadable input.
	Verify bool
	// DryRun plans the copy without touching dstDir.
	DryRun bool
}

// Step is one source file and the frame it becomes.
type Step struct {
	Index  int
	Source string
	Target string
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return []string{".jpg"}
	}
	return o.Extensions
}

func (o Options) pattern() string {
	if o.Pattern == "" {
		return "frame_%d.jpg"
	}
	return o.Pattern
}

func (o Options) accepts(name string) bool {
	for _, ext := range o.extensions() {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Less orders names naturally: digit runs compare numerically and letters
// compare without regard to case.
func Less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return natural.Less(la, lb)
	}
	return a < b
}

// Plan lists the accepted files in srcDir in natural order and assigns each
// a 1-based frame name. Target is a bare file name.
func Plan(srcDir string, opts Options) ([]Step, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !opts.accepts(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Slice(names, func(i, j int) bool { return Less(names[i], names[j]) })

	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{
			Index:  i + 1,
			Source: filepath.Join(srcDir, name),
			Target: fmt.Sprintf(opts.pattern(), i+1),
		}
	}
	return steps, nil
}

// Prepare copies every planned file from srcDir to dstDir under its frame
// name. It stops between files when ctx is cancelled.
func Prepare(ctx context.Context, srcDir, dstDir string, opts Options) ([]Step, error) {
	steps, err := Plan(srcDir, opts)
	if err != nil {
		return nil, err
	}
	if opts.Verify {
		for _, s := range steps {
			if err := verify(s.Source); err != nil {
				return nil, err
			}
		}
	}
	if opts.DryRun {
		return steps, nil
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return steps[:i], err
		}
		if err := copyFile(s.Source, filepath.Join(dstDir, s.Target)); err != nil {
			return steps[:i], err
		}
	}
	return steps, nil
}

func verify(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("verify %s: %w", filepath.Base(path), err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}
