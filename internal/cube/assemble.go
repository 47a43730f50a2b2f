package cube

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"netmobcli/internal/catalog"
)

// SliceLoader reads one raw slice. Returned slices are aligned to the sorted
// location list of the city and to the canonical time axis.
type SliceLoader interface {
	LoadSlice(ctx context.Context, key SliceKey) (*Slice, error)
}

// Assembler turns requests into cubes by loading every slice through a
// SliceLoader on a bounded worker pool.
type Assembler struct {
	loader      SliceLoader
	workers     int
	consumption map[string]float64
}

// NewAssembler creates an assembler. workers <= 0 loads one slice at a time;
// a nil consumption table uses the service catalog.
func NewAssembler(loader SliceLoader, workers int, consumption map[string]float64) *Assembler {
	if workers <= 0 {
		workers = 1
	}
	if consumption == nil {
		consumption = catalog.Consumption()
	}
	return &Assembler{loader: loader, workers: workers, consumption: consumption}
}

// Assemble resolves the request and builds its cube. Composite kinds load the
// uplink and downlink cubes independently before combining them.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Cube, error) {
	plan, err := req.Plan()
	if err != nil {
		return nil, err
	}

	cubes := make([]*Cube, 0, len(plan.Cities))
	for _, city := range plan.Cities {
		c, err := a.city(ctx, plan, city)
		if err != nil {
			return nil, fmt.Errorf("assemble %s: %w", city, err)
		}
		cubes = append(cubes, c)
	}
	return Concat(cubes...)
}

func (a *Assembler) city(ctx context.Context, plan Plan, city string) (*Cube, error) {
	if !plan.Kind.Composite() {
		return a.load(ctx, plan, city, plan.Kind)
	}

	ul, err := a.load(ctx, plan, city, catalog.Uplink)
	if err != nil {
		return nil, err
	}
	dl, err := a.load(ctx, plan, city, catalog.Downlink)
	if err != nil {
		return nil, err
	}
	total, err := Sum(ul, dl)
	if err != nil {
		return nil, err
	}
	if plan.Kind == catalog.Users {
		return PerUser(total, a.consumption)
	}
	return total, nil
}

func (a *Assembler) load(ctx context.Context, plan Plan, city string, kind catalog.TrafficKind) (*Cube, error) {
	keys := plan.Keys(city, kind)
	slots := make([]*Slice, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := a.loader.LoadSlice(gctx, key)
			if err != nil {
				return fmt.Errorf("load %s: %w", key, err)
			}
			slots[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	raw := make(map[SliceKey]*Slice, len(keys))
	for i, key := range keys {
		raw[key] = slots[i]
	}
	return Build(plan.Services, plan.Days, raw)
}
