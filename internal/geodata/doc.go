// Package geodata reads and writes the polygon layers consumed by the
// spatial package: one GeoJSON tile grid per city and the national IRIS zone
// layer. Coordinates are read as WGS84 longitude/latitude and must be
// reprojected before matching.
package geodata
