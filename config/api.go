package config

// APIConfig configures the HTTP server started by "greetd serve".
type APIConfig struct {
	Address string `json:"address" default:":8080"`
	// Token, when set, is required as a bearer token on /api routes.
	Token string `json:"token"`
}
