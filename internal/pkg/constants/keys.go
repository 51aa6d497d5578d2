package constants

const (
	CookieKeySecretToken = "secret_token"

	ViperSecretKey  = "api.admin_secret"
	ViperSigningKey = "api.signing_key"
)
