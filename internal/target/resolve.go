// Package target resolves a user supplied port, pid or name to the
// processes it refers to.
package target

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/pranshuparmar/ports/internal/ports"
	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/internal/process"
	"github.com/pranshuparmar/ports/pkg/model"
)

var ErrNoMatch = errors.New("no process found")

// Match finds the records a target refers to. A number that fits a port is
// tried as a port, then as a pid; a larger number can only be a pid;
// anything else is a name or container substring.
func Match(records []model.PortRecord, target string) []model.PortRecord {
	if port, err := strconv.ParseUint(target, 10, 16); err == nil {
		byPort := lo.Filter(records, func(r model.PortRecord, _ int) bool { return r.Port == uint16(port) })
		if len(byPort) > 0 {
			return byPort
		}
		return byPID(records, int(port))
	}
	if pid, err := strconv.Atoi(target); err == nil {
		return byPID(records, pid)
	}
	return lo.Filter(records, func(r model.PortRecord, _ int) bool { return ports.MatchesName(r, target) })
}

func byPID(records []model.PortRecord, pid int) []model.PortRecord {
	return lo.Filter(records, func(r model.PortRecord, _ int) bool { return r.PID == pid })
}

// UniqueByPID keeps the first record of each pid, in order.
func UniqueByPID(records []model.PortRecord) []model.PortRecord {
	return lo.UniqBy(records, func(r model.PortRecord) int { return r.PID })
}

// PortLabels lists the distinct "port/proto" pairs held by pid.
func PortLabels(records []model.PortRecord, pid int) []string {
	labels := lo.Uniq(lo.FilterMap(records, func(r model.PortRecord, _ int) (string, bool) {
		return fmt.Sprintf("%d/%s", r.Port, strings.ToLower(string(r.Protocol))), r.PID == pid
	}))
	sort.SliceStable(labels, func(i, j int) bool {
		return portOf(labels[i]) < portOf(labels[j])
	})
	return labels
}

func portOf(label string) int {
	n, _ := strconv.Atoi(strings.SplitN(label, "/", 2)[0])
	return n
}

// Explainer answers why queries.
type Explainer struct {
	Lister ports.Lister
	Cache  *process.Cache
}

// Records gathers listening sockets and, where the platform offers them,
// established connections.
func (e Explainer) Records() ([]model.PortRecord, error) {
	records, err := e.Lister.List(ports.Query{Filter: proc.FilterListening})
	if err != nil {
		return nil, err
	}
	if conns, err := e.Lister.List(ports.Query{Filter: proc.FilterEstablished}); err == nil {
		records = append(records, conns...)
	}
	return records, nil
}

// Explain resolves target and returns one result per matching process.
func (e Explainer) Explain(target string) ([]model.WhyResult, error) {
	records, err := e.Records()
	if err != nil {
		return nil, err
	}
	matches := UniqueByPID(Match(records, target))
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w matching %q", ErrNoMatch, target)
	}

	ancestry := e.Cache.GetBatch(lo.Map(matches, func(r model.PortRecord, _ int) process.Target {
		return process.Target{PID: r.PID, Name: r.ProcessName}
	}))

	results := make([]model.WhyResult, 0, len(matches))
	for _, m := range matches {
		res := model.WhyResult{
			PID:         m.PID,
			ProcessName: m.DisplayName(),
			Ports:       PortLabels(records, m.PID),
		}
		if a, ok := ancestry[m.PID]; ok {
			res.Ancestry = &a
		}
		results = append(results, res)
	}
	return results, nil
}
