package content

// Route classifies player behavior. It gates which events, endings and
// characters are reachable.
type Route string

const (
	RouteNeutral  Route = "neutral"
	RoutePacifist Route = "pacifist"
	RouteGenocide Route = "genocide"
)

// Valid reports whether r is one of the three known routes.
func (r Route) Valid() bool {
	switch r {
	case RouteNeutral, RoutePacifist, RouteGenocide:
		return true
	}
	return false
}
