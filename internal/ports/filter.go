// Package ports post-processes enumerated port records: naming, filtering,
// sorting, container enrichment and change detection.
package ports

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/pranshuparmar/ports/pkg/model"
)

// FilterProtocol keeps records of proto. An empty proto keeps everything.
func FilterProtocol(records []model.PortRecord, proto model.Protocol) []model.PortRecord {
	if proto == "" {
		return records
	}
	return lo.Filter(records, func(r model.PortRecord, _ int) bool {
		return r.Protocol == proto
	})
}

// FilterQuery keeps records matching query. A numeric query matches the
// port exactly; anything else is a case-insensitive substring of the
// process or container name. With useRegex the query is a regular
// expression over the same names.
func FilterQuery(records []model.PortRecord, query string, useRegex bool) ([]model.PortRecord, error) {
	if query == "" {
		return records, nil
	}
	if useRegex {
		re, err := regexp.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", query, err)
		}
		return lo.Filter(records, func(r model.PortRecord, _ int) bool {
			return re.MatchString(r.ProcessName) || (r.Container != "" && re.MatchString(r.Container))
		}), nil
	}
	if port, err := strconv.ParseUint(query, 10, 16); err == nil {
		return lo.Filter(records, func(r model.PortRecord, _ int) bool {
			return r.Port == uint16(port)
		}), nil
	}
	return lo.Filter(records, func(r model.PortRecord, _ int) bool {
		return MatchesName(r, query)
	}), nil
}

// MatchesName reports whether the process or container name contains
// needle, ignoring case.
func MatchesName(r model.PortRecord, needle string) bool {
	needle = strings.ToLower(needle)
	return strings.Contains(strings.ToLower(r.ProcessName), needle) ||
		(r.Container != "" && strings.Contains(strings.ToLower(r.Container), needle))
}

// SortField orders records for display.
type SortField string

const (
	SortNone SortField = ""
	SortPort SortField = "port"
	SortPID  SortField = "pid"
	SortName SortField = "name"
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(s)); f {
	case SortNone, SortPort, SortPID, SortName:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q (want port, pid or name)", s)
}

// Sort orders records in place. The sort is stable so equal keys keep
// enumeration order.
func Sort(records []model.PortRecord, field SortField) {
	var less func(a, b model.PortRecord) bool
	switch field {
	case SortPort:
		less = func(a, b model.PortRecord) bool { return a.Port < b.Port }
	case SortPID:
		less = func(a, b model.PortRecord) bool { return a.PID < b.PID }
	case SortName:
		less = func(a, b model.PortRecord) bool { return a.ProcessName < b.ProcessName }
	default:
		return
	}
	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}
