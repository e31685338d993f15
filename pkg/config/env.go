package config

const EnvPrefix = "ELAROSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	IdentityProviderJWT      = "jwt"
	IdentityProviderFirebase = "firebase"
)

const (
	EnvAppEnv            = "ELAROSE_APP_ENV"
	EnvPort              = "ELAROSE_APP_PORT"
	EnvDBDSN             = "ELAROSE_DB_DSN"
	EnvDBHost            = "ELAROSE_DB_HOST"
	EnvDBUser            = "ELAROSE_DB_USER"
	EnvDBName            = "ELAROSE_DB_NAME"
	EnvDBPassword        = "ELAROSE_DB_PASSWORD"
	EnvUseSQLite         = "ELAROSE_USE_SQLITE"
	EnvRedisAddr         = "ELAROSE_REDIS_ADDR"
	EnvIdentityProvider  = "ELAROSE_IDENTITY_PROVIDER"
	EnvJWTSecret         = "ELAROSE_JWT_SECRET"
	EnvFirebaseProjectID = "ELAROSE_FIREBASE_PROJECT_ID"
	EnvTaxRate           = "ELAROSE_TAX_RATE"
	EnvFreeShipping      = "ELAROSE_FREE_SHIPPING_THRESHOLD"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
