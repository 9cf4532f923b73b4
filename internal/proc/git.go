package proc

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/pranshuparmar/ports/pkg/model"
)

// Daemons usually chdir into one of these, none of which is a checkout.
var systemDirPrefixes = []string{"/usr", "/var/run", "/run", "/bin", "/sbin", "/proc", "/sys"}

func isSystemDir(dir string) bool {
	dir = filepath.Clean(dir)
	if dir == "/" {
		return true
	}
	for _, prefix := range systemDirPrefixes {
		if dir == prefix || strings.HasPrefix(dir, prefix+"/") {
			return true
		}
	}
	return false
}

// GitContextFor finds the repository enclosing dir. The branch is the
// checked out branch name, or the first 8 characters of the commit when
// HEAD is detached.
func GitContextFor(dir string) *model.GitContext {
	if dir == "" || isSystemDir(dir) {
		return nil
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil
	}

	ctx := &model.GitContext{Repo: filepath.Base(wt.Filesystem.Root())}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return ctx
	}
	if head.Type() == plumbing.SymbolicReference {
		ctx.Branch = head.Target().Short()
	} else {
		ctx.Branch = head.Hash().String()[:8]
	}
	return ctx
}
