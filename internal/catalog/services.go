package catalog

import "sort"

// Category groups services by usage pattern.
type Category string

const (
	CategoryStreaming    Category = "Streaming"
	CategorySocial       Category = "Social"
	CategoryMessaging    Category = "Messaging"
	CategoryMusic        Category = "Music"
	CategoryGaming       Category = "Gaming"
	CategoryCloud        Category = "Cloud"
	CategoryMail         Category = "Mail"
	CategoryNavigation   Category = "Navigation"
	CategoryProductivity Category = "Productivity"
	CategoryWeb          Category = "Web"
	CategoryStore        Category = "Store"
)

// NightSeriesCategories is the service subset summed by default when building
// per-location night time series.
var NightSeriesCategories = []Category{
	CategoryStreaming,
	CategorySocial,
	CategoryMessaging,
	CategoryMusic,
}

// Service is a named network service. Consumption is the average volume in
// bytes a single user generates on the service during one slot; zero means
// the constant is unknown and the service cannot produce a users estimate.
type Service struct {
	Name        string
	Category    Category
	Consumption float64
}

var services = []Service{
	{"Amazon_Web_Services", CategoryCloud, 0},
	{"Apple_App_Store", CategoryStore, 2.1e6},
	{"Apple_Mail", CategoryMail, 1.4e5},
	{"Apple_Music", CategoryMusic, 1.6e6},
	{"Apple_Siri", CategoryProductivity, 9.0e4},
	{"Apple_Video", CategoryStreaming, 3.8e7},
	{"Apple_Web_Services", CategoryCloud, 0},
	{"Apple_iCloud", CategoryCloud, 1.2e6},
	{"Apple_iMessage", CategoryMessaging, 1.1e5},
	{"Clash_of_Clans", CategoryGaming, 3.0e5},
	{"Dailymotion", CategoryStreaming, 2.4e7},
	{"Deezer", CategoryMusic, 1.5e6},
	{"Disney_Plus", CategoryStreaming, 4.6e7},
	{"EA_Games", CategoryGaming, 6.0e5},
	{"Facebook", CategorySocial, 4.2e6},
	{"Facebook_Live", CategoryStreaming, 1.9e7},
	{"Facebook_Messenger", CategoryMessaging, 2.6e5},
	{"Fortnite", CategoryGaming, 1.1e6},
	{"Google_Docs", CategoryProductivity, 3.5e5},
	{"Google_Drive", CategoryCloud, 2.8e6},
	{"Google_Maps", CategoryNavigation, 7.5e5},
	{"Google_Mail", CategoryMail, 2.2e5},
	{"Google_Meet", CategoryProductivity, 1.4e7},
	{"Google_Play_Store", CategoryStore, 3.2e6},
	{"Google_Web_Services", CategoryCloud, 0},
	{"Instagram", CategorySocial, 6.9e6},
	{"LinkedIn", CategorySocial, 9.5e5},
	{"Microsoft_Azure", CategoryCloud, 0},
	{"Microsoft_Mail", CategoryMail, 2.0e5},
	{"Microsoft_Office", CategoryProductivity, 4.4e5},
	{"Microsoft_Store", CategoryStore, 2.5e6},
	{"Microsoft_Web_Services", CategoryCloud, 0},
	{"Molotov", CategoryStreaming, 3.3e7},
	{"Netflix", CategoryStreaming, 5.4e7},
	{"Orange_TV", CategoryStreaming, 3.0e7},
	{"Periscope", CategoryStreaming, 1.2e7},
	{"Pinterest", CategorySocial, 2.3e6},
	{"Playstation", CategoryGaming, 2.7e6},
	{"Pokemon_GO", CategoryGaming, 4.1e5},
	{"Skype", CategoryMessaging, 5.2e6},
	{"Snapchat", CategorySocial, 5.8e6},
	{"SoundCloud", CategoryMusic, 1.3e6},
	{"Spotify", CategoryMusic, 1.7e6},
	{"Telegram", CategoryMessaging, 3.1e5},
	{"Twitch", CategoryStreaming, 4.1e7},
	{"Twitter", CategorySocial, 2.0e6},
	{"Uber", CategoryNavigation, 2.9e5},
	{"Waze", CategoryNavigation, 6.2e5},
	{"Web_Adult", CategoryWeb, 0},
	{"Web_Clothes", CategoryWeb, 0},
	{"Web_Downloads", CategoryWeb, 0},
	{"Web_Finance", CategoryWeb, 0},
	{"Web_Food", CategoryWeb, 0},
	{"Web_Games", CategoryWeb, 0},
	{"Web_Transportation", CategoryWeb, 0},
	{"Web_Weather", CategoryWeb, 0},
	{"Web_e-Commerce", CategoryWeb, 0},
	{"WhatsApp", CategoryMessaging, 4.8e5},
	{"Wikipedia", CategoryWeb, 3.7e5},
	{"Xbox_Live", CategoryGaming, 2.2e6},
	{"Yahoo", CategoryWeb, 0},
	{"Yahoo_Mail", CategoryMail, 1.6e5},
	{"YouTube", CategoryStreaming, 3.6e7},
}

var servicesByName = func() map[string]Service {
	m := make(map[string]Service, len(services))
	for _, s := range services {
		m[s.Name] = s
	}
	return m
}()

// Services returns every service in name order.
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// LookupService finds a service by its exact name.
func LookupService(name string) (Service, bool) {
	s, ok := servicesByName[name]
	return s, ok
}

// ServiceNames returns the names of the services usable for the given kind.
// A users estimate needs a known consumption constant, so USERS excludes
// services whose constant is zero.
func ServiceNames(kind TrafficKind) []string {
	names := make([]string, 0, len(services))
	for _, s := range services {
		if kind == Users && s.Consumption <= 0 {
			continue
		}
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// ServicesIn returns the sorted names of services belonging to any of the
// categories.
func ServicesIn(categories ...Category) []string {
	want := make(map[Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	var names []string
	for _, s := range services {
		if want[s.Category] {
			names = append(names, s.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Consumption returns the average consumption constant of every service,
// including the unknown (zero) ones.
func Consumption() map[string]float64 {
	m := make(map[string]float64, len(services))
	for _, s := range services {
		m[s.Name] = s.Consumption
	}
	return m
}
