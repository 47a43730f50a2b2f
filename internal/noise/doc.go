// Package noise removes the periods of a traffic series that do not reflect
// ordinary nights: the eves of public holidays and weekend days, per-city
// anomaly dates, and the detached first day of the observation window.
//
// Every removed period is 24 hours long and starts at Policy.Start (15:00 by
// default) on the day before the listed date.
package noise
