// Package night extracts night windows from a traffic series and reduces
// them.
//
// A window is given by a start and an end time of day. When the end is not
// after the start the window wraps past midnight, so a 22:00 to 03:00 night
// anchored on date D covers [D 22:00, D+1 03:00).
//
// Reductions:
//
//   - LocationTotals: per location and service, in hour equivalents
//   - TimeSeries: per location over chronological instants, services summed
//   - TimeOfDayProfile: per location, time of day and service, summed over
//     nights
package night
