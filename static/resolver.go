package static

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Status uint8

const (
	Found Status = iota
	NotFound
	Forbidden
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Result describes the outcome of a resolution. Path and Length are set only if the
// Status is Found.
type Result struct {
	Status Status
	Path   string
	Length int64
}

var ErrNotDirectory = errors.New("document root is not a directory")

// Resolver maps request paths onto regular files inside the document root. Nothing outside
// the root is ever resolved, including the targets of symlinks pointing out of it.
type Resolver struct {
	root  string
	index string
}

// NewResolver canonicalizes the root once. The root must exist and be a directory.
func NewResolver(root, index string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("document root: %w", err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("document root: %w", err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("document root: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", canonical, ErrNotDirectory)
	}

	return &Resolver{
		root:  canonical,
		index: index,
	}, nil
}

// Root returns the canonical document root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps the URL-decoded request path onto a file.
func (r *Resolver) Resolve(requestPath string) Result {
	candidate := r.root
	if !strings.HasPrefix(requestPath, "/") {
		candidate += string(filepath.Separator)
	}
	candidate += requestPath

	if _, err := os.Stat(candidate); err != nil {
		return Result{Status: NotFound}
	}

	canonical, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return Result{Status: NotFound}
	}

	if !r.contains(canonical) {
		return Result{Status: Forbidden}
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return Result{Status: NotFound}
	}

	if info.IsDir() {
		index := filepath.Join(canonical, r.index)
		if _, err = os.Stat(index); err != nil {
			return Result{Status: NotFound}
		}

		// the index itself may be a symlink
		if canonical, err = filepath.EvalSymlinks(index); err != nil {
			return Result{Status: NotFound}
		}

		if !r.contains(canonical) {
			return Result{Status: Forbidden}
		}

		if info, err = os.Stat(canonical); err != nil {
			return Result{Status: NotFound}
		}
	}

	if !info.Mode().IsRegular() {
		return Result{Status: NotFound}
	}

	return Result{
		Status: Found,
		Path:   canonical,
		Length: info.Size(),
	}
}

// contains compares paths component-wise, so /web-evil isn't considered to be inside
// of /web. The root is contained in itself.
func (r *Resolver) contains(path string) bool {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return false
	}

	if rel == "." {
		return true
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
