package gantry

import "strings"

// groupsMetadataKey is where Inspect stashes a registration's groups so the
// query surface can filter on them.
const groupsMetadataKey = "__groups"

// ServiceQuery defines criteria for querying services.
type ServiceQuery struct {
	// Lifecycle filters by service lifecycle (singleton, transient, scoped).
	// Empty string matches all lifecycles.
	Lifecycle string

	// Group filters by service group.
	// Empty string matches all groups.
	Group string

	// Metadata filters by service metadata key-value pairs.
	// All specified metadata must match for a service to be included.
	Metadata map[string]string

	// Started filters by whether the service has been started.
	// nil matches all services (started and not started).
	Started *bool
}

// Query returns detailed information about services matching the query
// criteria.
//
// Example:
//
//	// Find all started singleton services in the "api" group
//	started := true
//	results := gantry.Query(c, gantry.ServiceQuery{
//	    Lifecycle: "singleton",
//	    Group: "api",
//	    Started: &started,
//	})
func Query(c Container, query ServiceQuery) []ServiceInfo {
	var results []ServiceInfo

	for _, name := range c.Services() {
		info := c.Inspect(name)

		if query.Lifecycle != "" && info.Lifecycle != query.Lifecycle {
			continue
		}

		if query.Group != "" && !hasGroup(info, query.Group) {
			continue
		}

		if !metadataMatches(info, query.Metadata) {
			continue
		}

		if query.Started != nil && info.Started != *query.Started {
			continue
		}

		results = append(results, info)
	}

	return results
}

// QueryNames returns the names of services matching the query criteria.
//
// Example:
//
//	names := gantry.QueryNames(c, gantry.ServiceQuery{Group: "db"})
func QueryNames(c Container, query ServiceQuery) []string {
	results := Query(c, query)

	names := make([]string, len(results))
	for i, info := range results {
		names[i] = info.Name
	}

	return names
}

// FindByGroup returns all services in a specific group.
func FindByGroup(c Container, group string) []ServiceInfo {
	return Query(c, ServiceQuery{Group: group})
}

// FindByLifecycle returns all services with a specific lifecycle.
func FindByLifecycle(c Container, lifecycle string) []ServiceInfo {
	return Query(c, ServiceQuery{Lifecycle: lifecycle})
}

// FindStarted returns all services that have been started.
func FindStarted(c Container) []ServiceInfo {
	started := true

	return Query(c, ServiceQuery{Started: &started})
}

// FindNotStarted returns all services that have not been started.
func FindNotStarted(c Container) []ServiceInfo {
	started := false

	return Query(c, ServiceQuery{Started: &started})
}

func hasGroup(info ServiceInfo, group string) bool {
	for _, g := range serviceGroups(info) {
		if g == group {
			return true
		}
	}

	return false
}

func metadataMatches(info ServiceInfo, want map[string]string) bool {
	for key, value := range want {
		if info.Metadata[key] != value {
			return false
		}
	}

	return true
}

// serviceGroups extracts group names from a ServiceInfo.
func serviceGroups(info ServiceInfo) []string {
	groupStr, ok := info.Metadata[groupsMetadataKey]
	if !ok || groupStr == "" {
		return nil
	}

	return strings.Split(groupStr, ",")
}

// joinGroups encodes group names for the metadata map.
func joinGroups(groups []string) string {
	return strings.Join(groups, ",")
}
