package labels

import (
	"context"
	"fmt"
	"strings"
)

// Lookup modes.
const (
	ModeBulk     = "bulk"
	ModePerImage = "per_image"
)

// Source is the subset of the label API the resolver needs.
type Source interface {
	FetchAll(ctx context.Context) (map[string]string, error)
	Lookup(ctx context.Context, id string) (string, bool, error)
}

var _ Source = (*Client)(nil)

// Resolution maps image IDs to labels. Missing lists IDs the API had no
// label for, in request order.
type Resolution struct {
	Labels  map[string]string
	Missing []string
}

// Label returns the resolved label for id.
func (r Resolution) Label(id string) (string, bool) {
	label, ok := r.Labels[id]
	return label, ok
}

// Resolve looks up labels for ids using the given mode. Bulk mode issues a
// single request; per-image mode issues one request per distinct ID.
func Resolve(ctx context.Context, src Source, mode string, ids []string) (Resolution, error) {
	res := Resolution{Labels: make(map[string]string, len(ids))}
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return res, nil
	}

	switch mode {
	case ModeBulk, "":
		all, err := src.FetchAll(ctx)
		if err != nil {
			return Resolution{}, err
		}
		for _, id := range unique {
			if label, ok := all[id]; ok {
				res.Labels[id] = label
			} else {
				res.Missing = append(res.Missing, id)
			}
		}
	case ModePerImage:
		for _, id := range unique {
			if err := ctx.Err(); err != nil {
				return Resolution{}, err
			}
			label, found, err := src.Lookup(ctx, id)
			if err != nil {
				return Resolution{}, fmt.Errorf("lookup label for %q: %w", id, err)
			}
			if found {
				res.Labels[id] = label
			} else {
				res.Missing = append(res.Missing, id)
			}
		}
	default:
		return Resolution{}, fmt.Errorf("unknown label lookup mode %q", mode)
	}
	return res, nil
}
