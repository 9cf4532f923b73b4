package process

import (
	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/internal/source"
	"github.com/pranshuparmar/ports/pkg/model"
)

// Builder assembles the full causality answer for one pid.
type Builder struct {
	platform proc.Platform
	git      func(dir string) *model.GitContext
}

func NewBuilder(p proc.Platform) *Builder {
	return &Builder{platform: p, git: proc.GitContextFor}
}

// Build walks the ancestry of pid and classifies it. It reports false when
// the process is gone.
func (b *Builder) Build(pid int) (model.ProcessAncestry, bool) {
	chain := Walk(pid, b.platform.Process, b.platform.RootPID())
	if len(chain) == 0 {
		return model.ProcessAncestry{}, false
	}

	metadata, _ := b.platform.ContainerMetadata(pid)
	a := model.ProcessAncestry{
		Chain:    chain,
		Source:   source.Detect(chain, metadata),
		Warnings: b.platform.Health(pid),
		Unit:     b.platform.InitUnit(pid),
	}
	if cwd, ok := b.platform.WorkingDir(pid); ok {
		a.Git = b.git(cwd)
	}
	return a, true
}
