// Package cube indexes mobile traffic as a dense four dimensional array.
//
// # Architecture
//
// A Cube has the axis order (location, time_of_day, service, day). It is
// built from raw Slices, one per (service, day), each a location ×
// time-of-day table. Missing cells are replaced by zero and counted in a
// MissingReport rather than failing the build.
//
// Derived kinds are computed from two concrete cubes:
//
//   - UL_AND_DL is Sum(uplink, downlink)
//   - USERS is PerUser(Sum(uplink, downlink), consumption)
//
// Flatten turns the day and time-of-day axes into absolute instants,
// producing a Series on which calendar filters and night windows operate.
//
// # Usage
//
//	asm := cube.NewAssembler(loader, 8, nil)
//	c, err := asm.Assemble(ctx, cube.CityRequest{
//		Scope: cube.Scope{Kind: catalog.UplinkDownlink, Level: catalog.LevelIris},
//		City:  "Paris",
//	})
//	if err != nil {
//		return err
//	}
//	series := c.Flatten()
package cube
