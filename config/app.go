package config

type App struct {
	Port       string `env:"APP_PORT" default:"8080"`
	MongoURI   string `env:"MONGODB_URI,required"`
	MongoDB    string `env:"MONGODB_DB" default:"biblioinfo"`
	JWTSecret  string `env:"JWT_SECRET,required"`
	BcryptCost int    `env:"BCRYPT_COST" default:"10"`
	Env        string `env:"APP_ENV" default:"dev"`
}
