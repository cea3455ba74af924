package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watchparty/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	store = configVar[string]{
		envKey:       "SERVER_STORE",
		flagKey:      "store",
		defaultValue: app.StoreMemory,
		usage:        "Room store: memory or redis",
	}
	membersLimit = configVar[int]{
		envKey:       "SERVER_MEMBERS_LIMIT",
		flagKey:      "members-limit",
		defaultValue: 9,
		usage:        "Maximum number of members in the room",
	}
	playlistLimit = configVar[int]{
		envKey:       "SERVER_PLAYLIST_LIMIT",
		flagKey:      "playlist-limit",
		defaultValue: 25,
		usage:        "Maximum number of videos in the playlist",
	}
	roomGracePeriod = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_GRACE_PERIOD",
		flagKey:      "room-grace-period",
		defaultValue: 30 * time.Second,
		usage:        "How long an empty room is kept before teardown",
	}
	roomTTL = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_TTL",
		flagKey:      "room-ttl",
		defaultValue: 24 * 14 * time.Hour,
		usage:        "Expiry of idle room keys in redis",
	}
	relayTimeout = configVar[time.Duration]{
		envKey:       "SERVER_RELAY_TIMEOUT",
		flagKey:      "relay-timeout",
		defaultValue: 10 * time.Second,
		usage:        "How long a requester waits for the host to answer",
	}
	ackDenials = configVar[bool]{
		envKey:       "SERVER_ACK_DENIALS",
		flagKey:      "ack-denials",
		defaultValue: false,
		usage:        "Send action-denied events for refused actions",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func bind[T any](v configVar[T], define func(name string, value T, usage string) *T) {
	define(v.flagKey, v.defaultValue, v.usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	bind(port, pflag.Int)
	bind(host, pflag.String)
	bind(logLevel, pflag.String)
	bind(store, pflag.String)
	bind(membersLimit, pflag.Int)
	bind(playlistLimit, pflag.Int)
	bind(roomGracePeriod, pflag.Duration)
	bind(roomTTL, pflag.Duration)
	bind(relayTimeout, pflag.Duration)
	bind(ackDenials, pflag.Bool)
	bind(redisPort, pflag.Int)
	bind(redisHost, pflag.String)
	bind(redisPassword, pflag.String)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	return &app.AppConfig{
		Host:            viper.GetString(host.flagKey),
		Port:            viper.GetInt(port.flagKey),
		LogLevel:        viper.GetString(logLevel.flagKey),
		Store:           viper.GetString(store.flagKey),
		MembersLimit:    viper.GetInt(membersLimit.flagKey),
		PlaylistLimit:   viper.GetInt(playlistLimit.flagKey),
		RoomGracePeriod: viper.GetDuration(roomGracePeriod.flagKey),
		RoomTTL:         viper.GetDuration(roomTTL.flagKey),
		RelayTimeout:    viper.GetDuration(relayTimeout.flagKey),
		AckDenials:      viper.GetBool(ackDenials.flagKey),
		RedisPort:       viper.GetInt(redisPort.flagKey),
		RedisHost:       viper.GetString(redisHost.flagKey),
		RedisPassword:   viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
