package constants

// Push topics, one per entity collection.
const (
	TopicRoutes      = "/topic/routes"
	TopicLocations   = "/topic/locations"
	TopicCoordinates = "/topic/coordinates"
)

// PushTopics lists every topic the live channel subscribes to.
func PushTopics() []string {
	return []string{TopicRoutes, TopicLocations, TopicCoordinates}
}
