package ports

import (
	"errors"

	"go.uber.org/zap"

	"github.com/pranshuparmar/ports/internal/proc"
	"github.com/pranshuparmar/ports/pkg/model"
)

// Query describes one listing request.
type Query struct {
	Filter   proc.Filter
	Protocol model.Protocol
	Match    string
	Regex    bool
	Sort     SortField
}

// Lister runs queries against a platform.
type Lister struct {
	Platform   proc.Platform
	Containers *Containers
}

// List enumerates, names, enriches, filters and sorts records. A platform
// that could read nothing yields an empty list; only ErrUnsupported and an
// invalid query are errors.
func (l Lister) List(q Query) ([]model.PortRecord, error) {
	records, err := l.Platform.Sockets(q.Filter)
	if err != nil {
		if errors.Is(err, proc.ErrUnsupported) {
			return nil, err
		}
		zap.S().Debugw("no socket data", "platform", l.Platform.Name(), "error", err)
		records = nil
	}
	AnnotateServices(records)
	records = FilterProtocol(records, q.Protocol)
	l.Containers.Enrich(records)

	records, err = FilterQuery(records, q.Match, q.Regex)
	if err != nil {
		return nil, err
	}
	Sort(records, q.Sort)
	return records, nil
}
