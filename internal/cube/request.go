package cube

import (
	"fmt"
	"time"

	"netmobcli/internal/catalog"
	apperrors "netmobcli/internal/errors"
)

// Scope is shared by every request: what is measured and at which level.
type Scope struct {
	Kind  catalog.TrafficKind
	Level catalog.Level
}

// Plan is the resolved form of a request: the exact cities, services and days
// to load. Fixed axes have length one.
type Plan struct {
	Scope
	Cities   []string
	Services []string
	Days     []time.Time
}

// Request is one of the cube request variants below.
type Request interface {
	Plan() (Plan, error)
}

// CityRequest asks for every service and every day of one city. Services and
// Days narrow the enumerated axes when set.
type CityRequest struct {
	Scope
	City     string
	Services []string
	Days     []time.Time
}

// CityDayRequest fixes the day.
type CityDayRequest struct {
	Scope
	City string
	Day  time.Time
}

// CityServiceRequest fixes the service.
type CityServiceRequest struct {
	Scope
	City    string
	Service string
}

// CityServiceDayRequest fixes both service and day: a single slice.
type CityServiceDayRequest struct {
	Scope
	City    string
	Service string
	Day     time.Time
}

// ServiceRequest asks for one service over every city, concatenated along
// the location axis in city order.
type ServiceRequest struct {
	Scope
	Service string
	Cities  []string
}

func (r CityRequest) Plan() (Plan, error) {
	services := r.Services
	if len(services) == 0 {
		services = catalog.ServiceNames(r.Kind)
	}
	days := r.Days
	if len(days) == 0 {
		days = catalog.Days()
	}
	return resolve(r.Scope, []string{r.City}, services, days)
}

func (r CityDayRequest) Plan() (Plan, error) {
	return resolve(r.Scope, []string{r.City}, catalog.ServiceNames(r.Kind), []time.Time{r.Day})
}

func (r CityServiceRequest) Plan() (Plan, error) {
	return resolve(r.Scope, []string{r.City}, []string{r.Service}, catalog.Days())
}

func (r CityServiceDayRequest) Plan() (Plan, error) {
	return resolve(r.Scope, []string{r.City}, []string{r.Service}, []time.Time{r.Day})
}

func (r ServiceRequest) Plan() (Plan, error) {
	cities := r.Cities
	if len(cities) == 0 {
		cities = catalog.CityNames()
	}
	return resolve(r.Scope, cities, []string{r.Service}, catalog.Days())
}

func resolve(scope Scope, cities, services []string, days []time.Time) (Plan, error) {
	if _, err := catalog.ParseTrafficKind(string(scope.Kind)); err != nil {
		return Plan{}, apperrors.NewAppValidationError(err.Error())
	}
	if _, err := catalog.ParseLevel(string(scope.Level)); err != nil {
		return Plan{}, apperrors.NewAppValidationError(err.Error())
	}
	for _, c := range cities {
		if _, ok := catalog.LookupCity(c); !ok {
			return Plan{}, apperrors.NewAppValidationError(fmt.Sprintf("unknown city %q", c))
		}
	}
	for _, s := range services {
		if _, ok := catalog.LookupService(s); !ok {
			return Plan{}, apperrors.NewAppValidationError(fmt.Sprintf("unknown service %q", s))
		}
	}
	if len(services) == 0 {
		return Plan{}, apperrors.NewAppValidationError("no service selected")
	}

	out := Plan{
		Scope:    scope,
		Cities:   append([]string(nil), cities...),
		Services: append([]string(nil), services...),
		Days:     make([]time.Time, len(days)),
	}
	for i, d := range days {
		out.Days[i] = catalog.Truncate(d)
	}
	return out, nil
}

// Keys lists the slices of one city for a concrete (non composite) kind,
// services first then days.
func (p Plan) Keys(city string, kind catalog.TrafficKind) []SliceKey {
	keys := make([]SliceKey, 0, len(p.Services)*len(p.Days))
	for _, s := range p.Services {
		for _, d := range p.Days {
			keys = append(keys, SliceKey{City: city, Service: s, Day: d, Kind: kind, Level: p.Level})
		}
	}
	return keys
}
