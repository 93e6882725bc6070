package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Blob     Blob
	Amqp     Amqp
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Blob configures the video blob store. With an empty endpoint the service
// falls back to the local filesystem store (dev mode).
type Blob struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Amqp configures the video-analysis notification exchange. With an empty URL
// notifications are logged only (dev mode).
type Amqp struct {
	URL      string
	Exchange string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Blob.Endpoint = viper.GetString("BLOB_ENDPOINT")
	config.Blob.AccessKey = viper.GetString("BLOB_ACCESS_KEY")
	config.Blob.SecretKey = viper.GetString("BLOB_SECRET_KEY")
	config.Blob.Bucket = viper.GetString("BLOB_BUCKET")
	config.Blob.UseSSL = viper.GetBool("BLOB_USE_SSL")
	if config.Blob.Bucket == "" {
		config.Blob.Bucket = "candidate-videos"
	}

	config.Amqp.URL = viper.GetString("AMQP_URL")
	config.Amqp.Exchange = viper.GetString("AMQP_EXCHANGE")
	if config.Amqp.Exchange == "" {
		config.Amqp.Exchange = "assessment.events"
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	log.Info().Str("port", config.Server.Port).Str("database", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
